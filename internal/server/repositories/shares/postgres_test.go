package shares

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shareID  = "9d2f9a1c-3e55-4e0b-8d1a-7c6b5a4f3e21"
	folderID = "6f1c2a9e-4b7d-4c1e-9a51-0d7d3f2b8e10"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	q := `(?s)^INSERT\s+INTO\s+shared_folders\s*\(id,\s*folder_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at\s*$`
	mock.ExpectQuery(q).WithArgs(shareID, folderID, exp).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(exp.AddDate(0, 0, -1)))

	got, err := repo.Create(context.Background(), &models.SharedFolder{ID: shareID, FolderID: folderID, ExpiresAt: exp})
	require.NoError(t, err)
	assert.Equal(t, exp.AddDate(0, 0, -1), got.CreatedAt)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+shared_folders`).WillReturnError(errors.New("fk violation"))

	_, err := repo.Create(context.Background(), &models.SharedFolder{FolderID: folderID, ExpiresAt: time.Now()})
	require.Error(t, err)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	q := `(?s)^SELECT\s+id,\s*folder_id,\s*expires_at,\s*created_at\s+FROM\s+shared_folders\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "folder_id", "expires_at", "created_at"}).
			AddRow(shareID, folderID, exp, time.Now()))

	got, err := repo.GetByID(context.Background(), shareID)
	require.NoError(t, err)
	assert.Equal(t, folderID, got.FolderID)
	assert.Equal(t, exp, got.ExpiresAt)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+shared_folders`).WithArgs(shareID).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), shareID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), "1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByFolder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+shared_folders\s+WHERE\s+folder_id\s*=\s*\$1$`).
		WithArgs(folderID).WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteByFolder(context.Background(), folderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`^DELETE\s+FROM\s+shared_folders\s+WHERE\s+expires_at\s*<\s*\$1$`).
		WithArgs(cutoff).WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestDeleteExpired_Error(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+shared_folders`).WillReturnError(errors.New("down"))

	_, err := repo.DeleteExpired(context.Background(), time.Now())
	require.Error(t, err)
}
