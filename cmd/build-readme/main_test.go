package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "README.md.tmpl")
	out := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(tmpl, []byte("# fs-bot\n\n{{.Commands}}"), 0o644))

	require.NoError(t, run(tmpl, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "* **`!play`**\n  Play a sound: `play <name>`\n")
	assert.Contains(t, string(data), "* **`!quit`** (master only)\n")
}
