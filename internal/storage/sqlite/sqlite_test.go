package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/storage/sqlite"
)

func bootFixture(id, component string) model.Boot {
	return model.Boot{
		ID:           id,
		Component:    component,
		Status:       model.BootStatusInit,
		ScriptPath:   "/usr/local/startup/startup.sh",
		SnapshotPath: "/tmp/customer_env.json",
		Platform:     "ubuntu 22.04",
		StartedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewRepositoryInvalidConfig(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	require.Error(t, err)
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	b := bootFixture("01JD0000000000000000000001", "scheduler")
	require.NoError(t, repo.CreateBoot(ctx, b))

	got, err := repo.GetBoot(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "scheduler", got.Component)
	assert.Equal(t, model.BootStatusInit, got.Status)
	assert.Equal(t, "/tmp/customer_env.json", got.SnapshotPath)
	assert.Nil(t, got.ExitCode)
	assert.Nil(t, got.FinishedAt)
	assert.Equal(t, b.StartedAt, got.StartedAt)

	// Progress the boot to terminating with an exit code.
	now := time.Now().UTC().Truncate(time.Second)
	code := 3
	b.Status = model.BootStatusTerminating
	b.ExitCode = &code
	b.Discrepancies = 2
	b.FinishedAt = &now
	require.NoError(t, repo.UpdateBoot(ctx, b))

	updated, err := repo.GetBoot(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BootStatusTerminating, updated.Status)
	require.NotNil(t, updated.ExitCode)
	assert.Equal(t, 3, *updated.ExitCode)
	assert.Equal(t, 2, updated.Discrepancies)
	require.NotNil(t, updated.FinishedAt)
	assert.Equal(t, now, *updated.FinishedAt)
}

func TestRepositoryListBootsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	older := bootFixture("01JD0000000000000000000001", "scheduler")
	older.StartedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newer := bootFixture("01JD0000000000000000000002", "worker")

	require.NoError(t, repo.CreateBoot(ctx, older))
	require.NoError(t, repo.CreateBoot(ctx, newer))

	boots, err := repo.ListBoots(ctx)
	require.NoError(t, err)
	require.Len(t, boots, 2)
	assert.Equal(t, "worker", boots[0].Component)
	assert.Equal(t, "scheduler", boots[1].Component)
}

func TestRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.GetBoot(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	err = repo.UpdateBoot(ctx, bootFixture("missing", "scheduler"))
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryAlreadyExists(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	b := bootFixture("01JD0000000000000000000001", "scheduler")
	require.NoError(t, repo.CreateBoot(ctx, b))

	err := repo.CreateBoot(ctx, b)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))
}
