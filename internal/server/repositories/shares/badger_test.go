package shares

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgerRepo(t *testing.T) *BadgerRepository {
	t.Helper()
	db, err := kvx.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerRepository(kvx.NewRunner(db))
}

func TestBadger_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newBadgerRepo(t)
	exp := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	s, err := repo.Create(ctx, &models.SharedFolder{FolderID: "d1", ExpiresAt: exp})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got.ExpiresAt))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBadger_DeleteByFolder(t *testing.T) {
	ctx := context.Background()
	repo := newBadgerRepo(t)

	a, _ := repo.Create(ctx, &models.SharedFolder{FolderID: "d1", ExpiresAt: time.Now()})
	_, _ = repo.Create(ctx, &models.SharedFolder{FolderID: "d1", ExpiresAt: time.Now()})
	other, _ := repo.Create(ctx, &models.SharedFolder{FolderID: "d2", ExpiresAt: time.Now()})

	n, err := repo.DeleteByFolder(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.GetByID(ctx, other.ID)
	assert.NoError(t, err)
}

func TestBadger_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := newBadgerRepo(t)
	cutoff := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	old, _ := repo.Create(ctx, &models.SharedFolder{FolderID: "d1", ExpiresAt: cutoff.Add(-time.Hour)})
	edge, _ := repo.Create(ctx, &models.SharedFolder{FolderID: "d1", ExpiresAt: cutoff})
	fresh, _ := repo.Create(ctx, &models.SharedFolder{FolderID: "d1", ExpiresAt: cutoff.Add(time.Hour)})

	n, err := repo.DeleteExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.GetByID(ctx, edge.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)

	n, err = repo.DeleteByFolder(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
