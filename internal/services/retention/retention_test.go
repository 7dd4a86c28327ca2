package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
	"github.com/iyunix/go-agentdesk/internal/repository/kv"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type staticUsers struct {
	names []string
	err   error
}

func (u staticUsers) ListUsernames(context.Context) ([]string, error) { return u.names, u.err }

func TestNewServiceValidatesCron(t *testing.T) {
	_, err := NewService(Config{Cron: "not a cron", MaxAge: time.Hour}, staticUsers{}, nil, nopLogger{})
	assert.Error(t, err)

	_, err = NewService(Config{Cron: "0 3 * * *"}, staticUsers{}, nil, nopLogger{})
	assert.Error(t, err)

	svc, err := NewService(Config{}, staticUsers{}, nil, nopLogger{})
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
}

func TestRunOncePurgesOnlyOldEntries(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := conversation.NewStore(kv.NewStore(kv.NewMemoryBackend(), nopLogger{}), nopLogger{}, conversation.Config{
		Now: func() time.Time { return clock },
	})

	old, err := store.Create(ctx, "alice", "old")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "alice", old.ID))

	clock = clock.Add(40 * 24 * time.Hour)
	recent, err := store.Create(ctx, "alice", "recent")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "alice", recent.ID))

	_, err = store.Create(ctx, "bob", "live")
	require.NoError(t, err)

	svc, err := NewService(Config{Cron: "0 3 * * *", MaxAge: 30 * 24 * time.Hour}, staticUsers{names: []string{"alice", "bob"}}, store, nopLogger{})
	require.NoError(t, err)
	svc.now = func() time.Time { return clock }

	removed, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	trash := store.Trash(ctx, "alice")
	require.Len(t, trash, 1)
	assert.Equal(t, recent.ID, trash[0].ID)
	assert.Equal(t, 1, store.Count(ctx, "bob"))
}

// scriptedPurger fails for the listed users and removes one entry otherwise.
type scriptedPurger struct {
	failing map[string]bool
	calls   []string
}

func (p *scriptedPurger) PurgeTrash(ctx context.Context, username string, olderThan time.Time) (int, error) {
	p.calls = append(p.calls, username)
	if p.failing[username] {
		return 0, conversation.ErrStorageUnavailable
	}
	return 1, nil
}

func TestRunOnceSkipsUnreadableUsers(t *testing.T) {
	purger := &scriptedPurger{failing: map[string]bool{"alice": true}}
	svc, err := NewService(Config{Cron: "0 3 * * *", MaxAge: time.Hour}, staticUsers{names: []string{"alice", "bob"}}, purger, nopLogger{})
	require.NoError(t, err)

	removed, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"alice", "bob"}, purger.calls)
}

func TestRunOnceReportsListFailure(t *testing.T) {
	svc, err := NewService(Config{}, staticUsers{err: errors.New("db down")}, nil, nopLogger{})
	require.NoError(t, err)
	_, err = svc.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestStartStopsWithContext(t *testing.T) {
	svc, err := NewService(Config{Cron: "* * * * *", MaxAge: time.Hour}, staticUsers{}, nil, nopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	cancel()
}
