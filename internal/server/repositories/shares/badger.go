package shares

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/google/uuid"
)

const (
	sharePrefix       = "share:"
	shareFolderPrefix = "share-folder:"
)

type BadgerRepository struct {
	kv kvx.Runner
}

func NewBadgerRepository(kv kvx.Runner) *BadgerRepository {
	return &BadgerRepository{kv: kv}
}

func shareKey(id string) []byte { return []byte(sharePrefix + id) }

func folderIndexKey(folderID, id string) []byte {
	return []byte(shareFolderPrefix + folderID + ":" + id)
}

func (r *BadgerRepository) Create(_ context.Context, share *models.SharedFolder) (*models.SharedFolder, error) {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	share.CreatedAt = time.Now().UTC()

	err := r.kv.Update(func(txn *badger.Txn) error {
		if err := kvx.SetJSON(txn, shareKey(share.ID), share); err != nil {
			return err
		}
		return txn.Set(folderIndexKey(share.FolderID, share.ID), []byte{})
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

func (r *BadgerRepository) GetByID(_ context.Context, id string) (*models.SharedFolder, error) {
	s := &models.SharedFolder{}
	if err := r.kv.View(func(txn *badger.Txn) error {
		return kvx.GetJSON(txn, shareKey(id), s)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *BadgerRepository) DeleteByFolder(_ context.Context, folderID string) (int64, error) {
	prefix := []byte(shareFolderPrefix + folderID + ":")
	var n int64
	err := r.kv.Update(func(txn *badger.Txn) error {
		keys, err := kvx.ScanKeys(txn, prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			id := strings.TrimPrefix(string(k), string(prefix))
			if err := kvx.Delete(txn, shareKey(id)); err != nil {
				return err
			}
			if err := kvx.Delete(txn, k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BadgerRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.kv.Update(func(txn *badger.Txn) error {
		keys, err := kvx.ScanKeys(txn, []byte(sharePrefix))
		if err != nil {
			return err
		}
		for _, k := range keys {
			s := &models.SharedFolder{}
			if err := kvx.GetJSON(txn, k, s); err != nil {
				return err
			}
			if !s.ExpiresAt.Before(cutoff) {
				continue
			}
			if err := kvx.Delete(txn, folderIndexKey(s.FolderID, s.ID)); err != nil {
				return err
			}
			if err := kvx.Delete(txn, k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
