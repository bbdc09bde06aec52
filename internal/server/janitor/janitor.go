// Package janitor periodically purges share records that expired long
// enough ago that nobody can still be holding a cached copy.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

type Janitor struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	interval    time.Duration
	retention   time.Duration
	now         func() time.Time
}

func New(m repomanager.RepositoryManager, interval, retention time.Duration, logger logging.Logger) *Janitor {
	return &Janitor{
		repomanager: m,
		logger:      logger.With("module", "janitor"),
		interval:    interval,
		retention:   retention,
		now:         time.Now,
	}
}

// Sweep deletes shares that expired before now minus the retention window.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.repomanager.Shares().DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep expired shares: %w", err)
	}
	if n > 0 {
		j.logger.Info(ctx, "expired shares purged", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// Run sweeps on every tick until ctx is done. A non-positive interval
// disables the janitor and Run returns immediately.
func (j *Janitor) Run(ctx context.Context) error {
	if j.interval <= 0 {
		j.logger.Info(ctx, "janitor disabled")
		return nil
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error(ctx, "janitor sweep failed", "error", err)
			}
		}
	}
}
