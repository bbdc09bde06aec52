package repomanager

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/shares"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/users"
	"github.com/sethvargo/go-retry"
)

// conflictRetries bounds how often a transaction that lost a commit race to
// another writer is replayed. Every round of racing writers commits at least
// one of them, so this also bounds the writers one folder can absorb at once.
const conflictRetries = 8

// BadgerRepositoryManager vends repositories over an embedded badger store.
type BadgerRepositoryManager struct {
	db *badger.DB
	kv kvx.Runner
	// inTx marks a manager handed to a WithTx callback.
	inTx bool
}

func NewBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{db: db, kv: kvx.NewRunner(db)}
}

func (m *BadgerRepositoryManager) Users() users.Repository {
	return users.NewBadgerRepository(m.kv)
}

func (m *BadgerRepositoryManager) Folders() folders.Repository {
	return folders.NewBadgerRepository(m.kv)
}

func (m *BadgerRepositoryManager) Files() files.Repository {
	return files.NewBadgerRepository(m.kv)
}

func (m *BadgerRepositoryManager) Shares() shares.Repository {
	return shares.NewBadgerRepository(m.kv)
}

// WithTx runs fn in one badger transaction. A commit that fails with
// badger.ErrConflict reruns fn on a fresh snapshot, so fn must not have
// side effects outside the transaction.
func (m *BadgerRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	if m.inTx {
		return fn(ctx, m)
	}
	backoff := retry.WithMaxRetries(conflictRetries,
		retry.WithCappedDuration(100*time.Millisecond,
			retry.WithJitterPercent(50, retry.NewExponential(2*time.Millisecond))))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := kvx.WithTxn(m.db, func(r kvx.Runner) error {
			return fn(ctx, &BadgerRepositoryManager{db: m.db, kv: r, inTx: true})
		})
		if errors.Is(err, badger.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}
