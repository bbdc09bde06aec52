package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, share *models.SharedFolder) (*models.SharedFolder, error) {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO shared_folders (id, folder_id, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, share.ID, share.FolderID, share.ExpiresAt).Scan(&share.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return share, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.SharedFolder, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, folder_id, expires_at, created_at FROM shared_folders
		 WHERE id = $1
		 `

	s := &models.SharedFolder{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.FolderID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) DeleteByFolder(ctx context.Context, folderID string) (int64, error) {
	if !dbx.ValidUUID(folderID) {
		return 0, nil
	}
	return r.exec(ctx, `DELETE FROM shared_folders WHERE folder_id = $1`, folderID)
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM shared_folders WHERE expires_at < $1`, cutoff)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, arg any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
