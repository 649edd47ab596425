package bot

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fs-bot/internal/command"
	"fs-bot/internal/config"
	"fs-bot/internal/console"
	"fs-bot/internal/platform"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServerID:        "100",
		VoiceChannelID:  "200",
		StatusChannelID: "status",
		MasterID:        "master",
		BotID:           "900",
		CommandPrefix:   "!",
		SoundDir:        dir,
		HelloSounds:     7,
		SourceURL:       "https://example.com/fs-bot",
		StoragePath:     filepath.Join(dir, "users.json"),
	}
}

func TestBot_ConsoleSession(t *testing.T) {
	cfg := testConfig(t)
	input := strings.Join([]string{
		"!code",
		"/join bob",
		"/as bob !seen master",
		"/leave bob",
		"!quit",
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	conn := console.New(strings.NewReader(input), out, console.Options{
		ServerID:       cfg.ServerID,
		VoiceChannelID: cfg.VoiceChannelID,
		UserID:         cfg.MasterID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := New(ctx, cfg, conn, conn, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Run(ctx))

	got := out.String()
	assert.Contains(t, got, "[#console] You can find my internals at https://example.com/fs-bot")
	assert.Contains(t, got, "**bob** joined.")
	assert.Contains(t, got, "**bob** left.")
	assert.Contains(t, got, "**master**: last in voice never")
	assert.Contains(t, got, "[#console] Bye master.")
	assert.True(t, strings.HasSuffix(got, "* left voice\n* disconnected\n"))
}

func TestRegisterCommands(t *testing.T) {
	reg := command.NewRegistry(nil, zerolog.Nop())
	require.NoError(t, RegisterCommands(reg, nil, nil))

	var names []string
	for _, c := range reg.Commands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"play", "seen", "voice"}, names)

	assert.ErrorIs(t, RegisterCommands(reg, nil, nil), command.ErrDuplicateCommand)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(context.Canceled))
	assert.Equal(t, 1, ExitCode(&platform.TransportError{Fatal: true, Code: 4004}))
	assert.Equal(t, 1, ExitCode(errors.New("connect: invalid token")))
}
