package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO folders (id, name, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, folder.ID, folder.Name, folder.UserID).Scan(&folder.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return folder, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, name, user_id, created_at FROM folders
		 WHERE id = $1
		 `

	f := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Folder, error) {
	if !dbx.ValidUUID(userID) {
		return []*models.Folder{}, nil
	}

	query :=
		`SELECT id, name, user_id, created_at FROM folders
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Folder{}
	for rows.Next() {
		f := &models.Folder{}
		if err := rows.Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id, name string) (*models.Folder, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}

	query :=
		`UPDATE folders SET name = $2
		 WHERE id = $1
		 RETURNING id, name, user_id, created_at
		 `

	f := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, id, name).Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// Touch row-locks the folder until the transaction ends.
func (r *PostgresRepository) Touch(ctx context.Context, id string) error {
	if !dbx.ValidUUID(id) {
		return common.ErrorNotFound
	}

	var locked string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM folders WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !dbx.ValidUUID(id) {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
