// Package repomanager vends the metadata repositories for one backend and
// runs groups of repository calls atomically.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/shares"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/users"
)

// TxFunc receives a manager whose repositories all share one transaction.
type TxFunc func(ctx context.Context, tx RepositoryManager) error

type RepositoryManager interface {
	Users() users.Repository
	Folders() folders.Repository
	Files() files.Repository
	Shares() shares.Repository
	// WithTx commits everything fn did through tx, or nothing if fn fails.
	WithTx(ctx context.Context, fn TxFunc) error
}
