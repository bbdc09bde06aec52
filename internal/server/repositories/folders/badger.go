package folders

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/google/uuid"
)

const (
	folderPrefix     = "folder:"
	folderUserPrefix = "folder-user:"
)

type BadgerRepository struct {
	kv kvx.Runner
}

func NewBadgerRepository(kv kvx.Runner) *BadgerRepository {
	return &BadgerRepository{kv: kv}
}

func folderKey(id string) []byte { return []byte(folderPrefix + id) }

func userIndexKey(userID, id string) []byte {
	return []byte(folderUserPrefix + userID + ":" + id)
}

func (r *BadgerRepository) Create(_ context.Context, folder *models.Folder) (*models.Folder, error) {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	folder.CreatedAt = time.Now().UTC()

	stored := *folder
	stored.Files = nil

	err := r.kv.Update(func(txn *badger.Txn) error {
		if err := kvx.SetJSON(txn, folderKey(folder.ID), &stored); err != nil {
			return err
		}
		return txn.Set(userIndexKey(folder.UserID, folder.ID), []byte{})
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (r *BadgerRepository) GetByID(_ context.Context, id string) (*models.Folder, error) {
	f := &models.Folder{}
	if err := r.kv.View(func(txn *badger.Txn) error {
		return kvx.GetJSON(txn, folderKey(id), f)
	}); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *BadgerRepository) ListByUser(_ context.Context, userID string) ([]*models.Folder, error) {
	prefix := []byte(folderUserPrefix + userID + ":")
	result := []*models.Folder{}

	err := r.kv.View(func(txn *badger.Txn) error {
		keys, err := kvx.ScanKeys(txn, prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			id := strings.TrimPrefix(string(k), string(prefix))
			f := &models.Folder{}
			if err := kvx.GetJSON(txn, folderKey(id), f); err != nil {
				return err
			}
			result = append(result, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *BadgerRepository) Rename(_ context.Context, id, name string) (*models.Folder, error) {
	f := &models.Folder{}
	err := r.kv.Update(func(txn *badger.Txn) error {
		if err := kvx.GetJSON(txn, folderKey(id), f); err != nil {
			return err
		}
		f.Name = name
		return kvx.SetJSON(txn, folderKey(id), f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Touch rewrites the folder record unchanged. Badger only detects conflicts
// on keys a transaction read, and new file index keys are invisible to a
// cascade's snapshot, so both sides must meet on the folder key itself.
func (r *BadgerRepository) Touch(_ context.Context, id string) error {
	return r.kv.Update(func(txn *badger.Txn) error {
		f := &models.Folder{}
		if err := kvx.GetJSON(txn, folderKey(id), f); err != nil {
			return err
		}
		return kvx.SetJSON(txn, folderKey(id), f)
	})
}

func (r *BadgerRepository) Delete(_ context.Context, id string) error {
	return r.kv.Update(func(txn *badger.Txn) error {
		f := &models.Folder{}
		if err := kvx.GetJSON(txn, folderKey(id), f); err != nil {
			return err
		}
		if err := kvx.Delete(txn, userIndexKey(f.UserID, id)); err != nil {
			return err
		}
		return kvx.Delete(txn, folderKey(id))
	})
}
