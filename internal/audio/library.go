// Package audio loads the bot's sound clips from disk and hands them to an
// audio sink for playback.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-audio/wav"
)

const (
	// SampleRate and Channels are what the voice sink expects.
	SampleRate = 48000
	Channels   = 2
)

var (
	ErrSoundNotFound    = errors.New("sound not found")
	ErrInvalidSoundName = errors.New("invalid sound name")
)

var soundName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidName reports whether name may be used as a sound name. Names come from
// chat, so anything that could escape the sound directory is refused.
func ValidName(name string) bool {
	return soundName.MatchString(name)
}

// Clip is decoded 16-bit signed PCM, interleaved when stereo.
type Clip struct {
	Name       string
	Samples    []int16
	Stereo     bool
	SampleRate int
}

// Library reads "<name>.wav" files from a directory.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Path returns the file a sound name maps to.
func (l *Library) Path(name string) string {
	return filepath.Join(l.dir, name+".wav")
}

// Load decodes the named clip. A missing file is ErrSoundNotFound.
func (l *Library) Load(name string) (*Clip, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSoundName, name)
	}

	f, err := os.Open(l.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSoundNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open sound %s: %w", name, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("sound %s is not a valid wav file", name)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound %s: %w", name, err)
	}

	channels := buf.Format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("sound %s has %d channels, want 1 or 2", name, channels)
	}

	depth := int(dec.BitDepth)
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = toInt16(v, depth)
	}

	return &Clip{
		Name:       name,
		Samples:    samples,
		Stereo:     channels == 2,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

func toInt16(v, depth int) int16 {
	switch depth {
	case 8:
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}

// Frames returns the clip as 48 kHz interleaved stereo, the format voice
// connections are fed with.
func (c *Clip) Frames() []int16 {
	stereo := c.Samples
	if !c.Stereo {
		stereo = make([]int16, len(c.Samples)*2)
		for i, s := range c.Samples {
			stereo[2*i] = s
			stereo[2*i+1] = s
		}
	}

	if c.SampleRate == SampleRate || c.SampleRate <= 0 {
		return stereo
	}

	// Nearest-sample resampling; sound effects do not need better.
	in := len(stereo) / 2
	out := int(int64(in) * SampleRate / int64(c.SampleRate))
	res := make([]int16, out*2)
	for i := 0; i < out; i++ {
		src := int(int64(i) * int64(c.SampleRate) / SampleRate)
		res[2*i] = stereo[2*src]
		res[2*i+1] = stereo[2*src+1]
	}
	return res
}
