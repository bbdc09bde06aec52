package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"golang.org/x/sync/errgroup"
)

const blobCleanupParallelism = 8

// purgeBlobs deletes locations best-effort. Metadata is already gone when
// this runs, so failures are logged and never returned. Cleanup outlives the
// request context.
func purgeBlobs(ctx context.Context, store blobstore.Store, logger logging.Logger, locations []string) {
	if len(locations) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(blobCleanupParallelism)

	for _, loc := range locations {
		g.Go(func() error {
			err := store.Delete(ctx, loc)
			switch {
			case err == nil:
			case errors.Is(err, blobstore.ErrBlobNotFound):
				logger.Debug(ctx, "blob already gone", "location", loc)
			default:
				logger.Warn(ctx, "blob cleanup failed", "location", loc, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
