package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T, dir, name string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name+".wav"))
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("hello0"))
	assert.True(t, ValidName("good-bye_2"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("../secret"))
	assert.False(t, ValidName("a/b"))
	assert.False(t, ValidName("hello.wav"))
}

func TestLoad_Stereo(t *testing.T) {
	dir := t.TempDir()
	writeWav(t, dir, "hello0", SampleRate, 2, []int{1, -1, 1000, -1000})

	clip, err := NewLibrary(dir).Load("hello0")
	require.NoError(t, err)
	assert.True(t, clip.Stereo)
	assert.Equal(t, SampleRate, clip.SampleRate)
	assert.Equal(t, []int16{1, -1, 1000, -1000}, clip.Samples)
	assert.Equal(t, clip.Samples, clip.Frames())
}

func TestLoad_MonoIsDuplicated(t *testing.T) {
	dir := t.TempDir()
	writeWav(t, dir, "goodbye", SampleRate, 1, []int{5, 6})

	clip, err := NewLibrary(dir).Load("goodbye")
	require.NoError(t, err)
	assert.False(t, clip.Stereo)
	assert.Equal(t, []int16{5, 5, 6, 6}, clip.Frames())
}

func TestFrames_Resamples(t *testing.T) {
	clip := &Clip{Samples: []int16{1, 1, 2, 2}, Stereo: true, SampleRate: SampleRate / 2}
	assert.Equal(t, []int16{1, 1, 1, 1, 2, 2, 2, 2}, clip.Frames())
}

func TestLoad_Missing(t *testing.T) {
	_, err := NewLibrary(t.TempDir()).Load("hello3")
	require.ErrorIs(t, err, ErrSoundNotFound)
}

func TestLoad_InvalidName(t *testing.T) {
	_, err := NewLibrary(t.TempDir()).Load("../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidSoundName)
}

func TestLoad_NotWav(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noise.wav"), []byte("not a riff file"), 0o644))

	_, err := NewLibrary(dir).Load("noise")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSoundNotFound)
}

type captureSink struct {
	server string
	clip   *Clip
}

func (s *captureSink) PlayWaveform(_ context.Context, serverID string, clip *Clip) error {
	s.server, s.clip = serverID, clip
	return nil
}

func TestSoundboard_Play(t *testing.T) {
	dir := t.TempDir()
	writeWav(t, dir, "hello1", SampleRate, 2, []int{7, 7})
	sink := &captureSink{}
	board := NewSoundboard(NewLibrary(dir), sink, zerolog.Nop())

	require.NoError(t, board.Play(context.Background(), "42", "hello1"))
	assert.Equal(t, "42", sink.server)
	require.NotNil(t, sink.clip)
	assert.Equal(t, "hello1", sink.clip.Name)

	err := board.Play(context.Background(), "42", "missing")
	require.ErrorIs(t, err, ErrSoundNotFound)
}
