package user

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

func newTestRepo(t *testing.T) UserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return NewGormUserRepository(db)
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.Create(ctx, &domain.User{Username: "alice", Password: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateRejectsDuplicatesAndBadNames(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Create(ctx, &domain.User{Username: "alice", Password: "hash"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = repo.Create(ctx, &domain.User{Username: "a b", Password: "hash"})
	assert.Error(t, err)
}

func TestListUsernames(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	names, err := repo.ListUsernames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"carol", "alice", "bob"} {
		_, err := repo.Create(ctx, &domain.User{Username: n, Password: "hash"})
		require.NoError(t, err)
	}
	names, err = repo.ListUsernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "alice", "bob"}, names)
}
