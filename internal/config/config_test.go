package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FSB_DISCORD_TOKEN", "token")
	t.Setenv("FSB_SERVER_ID", "175928847299117063")
	t.Setenv("FSB_VOICE_CHANNEL_ID", "175928847299117064")
	t.Setenv("FSB_STATUS_CHANNEL_ID", "175928847299117065")
	t.Setenv("FSB_MASTER_PERMISSION_ID", "175928847299117066")
	t.Setenv("FSB_MY_ID", "175928847299117067")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "175928847299117063", cfg.ServerID)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 7, cfg.HelloSounds)
	assert.Equal(t, 500*time.Millisecond, cfg.AnnounceDelay)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("FSB_MY_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FSB_MY_ID")
}

func TestLoad_MalformedID(t *testing.T) {
	setRequired(t)
	t.Setenv("FSB_VOICE_CHANNEL_ID", "general")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FSB_VOICE_CHANNEL_ID")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FSB_COMMAND_PREFIX", "?")
	t.Setenv("FSB_HELLO_SOUNDS", "3")
	t.Setenv("FSB_ANNOUNCE_DELAY", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.CommandPrefix)
	assert.Equal(t, 3, cfg.HelloSounds)
	assert.Equal(t, time.Second, cfg.AnnounceDelay)
}

func TestLoad_InvalidHelloSounds(t *testing.T) {
	setRequired(t)
	t.Setenv("FSB_HELLO_SOUNDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FSB_HELLO_SOUNDS")
}
