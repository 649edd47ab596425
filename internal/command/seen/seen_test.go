package seen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fs-bot/internal/command/commandtest"
	"fs-bot/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]storage.UserRecord

func (f fakeUsers) Lookup(ctx context.Context, name string) (*storage.UserRecord, error) {
	rec, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("find name %q: %w", name, storage.ErrUserNotFound)
	}
	return &rec, nil
}

func TestSeen_Known(t *testing.T) {
	users := fakeUsers{"Alice": {
		ID:              "1",
		DisplayName:     "Alice",
		LastSeenInVoice: time.Date(2024, 3, 9, 20, 15, 0, 0, time.UTC),
	}}
	conn := &commandtest.Conn{}

	require.NoError(t, (&SeenCommand{Users: users}).Run(context.Background(), commandtest.NewContext(conn, "u"), []string{"Alice"}))
	assert.Equal(t, []string{"**Alice**: last in voice 09.03.2024 20:15:00, last in chat never."}, conn.Texts())
}

func TestSeen_NameWithSpaces(t *testing.T) {
	users := fakeUsers{"Big Bob": {ID: "2", DisplayName: "Big Bob"}}
	conn := &commandtest.Conn{}

	require.NoError(t, (&SeenCommand{Users: users}).Run(context.Background(), commandtest.NewContext(conn, "u"), []string{"Big", "Bob"}))
	assert.Equal(t, []string{"**Big Bob**: last in voice never, last in chat never."}, conn.Texts())
}

func TestSeen_Unknown(t *testing.T) {
	conn := &commandtest.Conn{}

	require.NoError(t, (&SeenCommand{Users: fakeUsers{}}).Run(context.Background(), commandtest.NewContext(conn, "u"), []string{"Zed"}))
	assert.Equal(t, []string{"I have never seen **Zed**."}, conn.Texts())
}
