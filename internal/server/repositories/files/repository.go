package files

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// Repository persists file metadata. Listings are ordered oldest first.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	ListByFolder(ctx context.Context, folderID string) ([]*models.File, error)
	// ListUnfiled returns the user's files that belong to no folder.
	ListUnfiled(ctx context.Context, userID string) ([]*models.File, error)
	Delete(ctx context.Context, id string) error
	// DeleteByFolder removes every file of a folder and reports how many
	// rows went away. Zero is not an error.
	DeleteByFolder(ctx context.Context, folderID string) (int64, error)
}
