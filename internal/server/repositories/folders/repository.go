package folders

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// Repository persists folders. Reads of an unknown id return
// common.ErrorNotFound. Files are not loaded here; services attach them.
type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	// ListByUser returns the user's folders oldest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Folder, error)
	Rename(ctx context.Context, id, name string) (*models.Folder, error)
	// Touch claims the folder for the surrounding transaction so that a
	// concurrent transaction deleting it or adding files to it cannot commit
	// alongside this one.
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
