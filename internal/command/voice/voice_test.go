package voice

import (
	"context"
	"testing"

	"fs-bot/internal/command/commandtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoice_Join(t *testing.T) {
	conn := &commandtest.Conn{}
	require.NoError(t, (&VoiceCommand{}).Run(context.Background(), commandtest.NewContext(conn, "u"), []string{"join"}))
	assert.Equal(t, []string{"voice"}, conn.Joined)
	assert.Zero(t, conn.Left)
}

func TestVoice_Leave(t *testing.T) {
	conn := &commandtest.Conn{}
	require.NoError(t, (&VoiceCommand{}).Run(context.Background(), commandtest.NewContext(conn, "u"), []string{"leave"}))
	assert.Empty(t, conn.Joined)
	assert.Equal(t, 1, conn.Left)
}

func TestVoice_BadArguments(t *testing.T) {
	for _, args := range [][]string{nil, {"dance"}} {
		conn := &commandtest.Conn{}
		require.NoError(t, (&VoiceCommand{}).Run(context.Background(), commandtest.NewContext(conn, "u"), args))
		assert.Empty(t, conn.Joined)
		assert.Zero(t, conn.Left)
		assert.Equal(t, []string{"Usage: `voice join|leave`"}, conn.Texts())
	}
}
