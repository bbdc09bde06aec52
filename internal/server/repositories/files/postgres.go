package files

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

const fileColumns = `id, name, size, mime_type, location, user_id, folder_id, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{}
	var folderID sql.NullString
	if err := s.Scan(&f.ID, &f.Name, &f.Size, &f.MimeType, &f.Location, &f.UserID, &folderID, &f.CreatedAt); err != nil {
		return nil, err
	}
	if folderID.Valid {
		f.FolderID = &folderID.String
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	var folderID sql.NullString
	if file.FolderID != nil {
		folderID = sql.NullString{String: *file.FolderID, Valid: true}
	}

	query :=
		`INSERT INTO files (id, name, size, mime_type, location, user_id, folder_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.ID, file.Name, file.Size, file.MimeType, file.Location, file.UserID, folderID).Scan(&file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.File, error) {
	if !dbx.ValidUUID(folderID) {
		return []*models.File{}, nil
	}
	query := `SELECT ` + fileColumns + ` FROM files WHERE folder_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, folderID)
}

func (r *PostgresRepository) ListUnfiled(ctx context.Context, userID string) ([]*models.File, error) {
	if !dbx.ValidUUID(userID) {
		return []*models.File{}, nil
	}
	query := `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1 AND folder_id IS NULL ORDER BY created_at, id`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !dbx.ValidUUID(id) {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
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

func (r *PostgresRepository) DeleteByFolder(ctx context.Context, folderID string) (int64, error) {
	if !dbx.ValidUUID(folderID) {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE folder_id = $1`, folderID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
