package discord

import (
	"context"
	"fmt"

	"fs-bot/internal/audio"
	"fs-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	frameSize   = 960 // 20ms at 48kHz
	maxOpusSize = frameSize * audio.Channels * 2
)

var _ audio.Sink = (*Client)(nil)

// PlayWaveform starts playing clip on the server's voice connection and
// returns without waiting for it to finish. A new clip replaces the one
// playing.
func (c *Client) PlayWaveform(ctx context.Context, serverID string, clip *audio.Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vc := c.voiceConnection(serverID)
	if vc == nil || !voiceReady(vc) {
		return platform.ErrNotInVoice
	}

	pcm := clip.Frames()
	name := clip.Name
	return c.jobs.Replace(playbackJob(serverID), func(ctx context.Context) error {
		if err := streamPCM(ctx, vc, pcm); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func playbackJob(serverID string) string {
	return "playback:" + serverID
}

// streamPCM encodes interleaved 48kHz stereo PCM to Opus and sends it until
// the samples run out or ctx ends.
func streamPCM(ctx context.Context, vc *discordgo.VoiceConnection, pcm []int16) error {
	encoder, err := gopus.NewEncoder(audio.SampleRate, audio.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	if err := vc.Speaking(true); err != nil {
		return fmt.Errorf("speaking: %w", err)
	}
	defer vc.Speaking(false)

	for _, frame := range pcmFrames(pcm) {
		opus, err := encoder.Encode(frame, frameSize, maxOpusSize)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case vc.OpusSend <- opus:
		}
	}
	return nil
}

// pcmFrames splits pcm into full frames, padding the last one with silence.
func pcmFrames(pcm []int16) [][]int16 {
	const n = frameSize * audio.Channels

	frames := make([][]int16, 0, (len(pcm)+n-1)/n)
	for start := 0; start < len(pcm); start += n {
		end := start + n
		if end <= len(pcm) {
			frames = append(frames, pcm[start:end])
			continue
		}
		last := make([]int16, n)
		copy(last, pcm[start:])
		frames = append(frames, last)
	}
	return frames
}
