package shares

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// Repository persists share capabilities. Records are immutable once created;
// they are removed only with their folder or by expiry housekeeping.
type Repository interface {
	Create(ctx context.Context, share *models.SharedFolder) (*models.SharedFolder, error)
	GetByID(ctx context.Context, id string) (*models.SharedFolder, error)
	DeleteByFolder(ctx context.Context, folderID string) (int64, error)
	// DeleteExpired removes shares whose expiry is strictly before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
