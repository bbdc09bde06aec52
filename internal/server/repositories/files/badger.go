package files

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
	filePrefix       = "file:"
	fileFolderPrefix = "file-folder:"
	// file-unfiled:<userId>:<fileId> indexes files with no folder.
	fileUnfiledPrefix = "file-unfiled:"
)

type BadgerRepository struct {
	kv kvx.Runner
}

func NewBadgerRepository(kv kvx.Runner) *BadgerRepository {
	return &BadgerRepository{kv: kv}
}

func fileKey(id string) []byte { return []byte(filePrefix + id) }

func indexKey(f *models.File) []byte {
	if f.FolderID != nil {
		return []byte(fileFolderPrefix + *f.FolderID + ":" + f.ID)
	}
	return []byte(fileUnfiledPrefix + f.UserID + ":" + f.ID)
}

func (r *BadgerRepository) Create(_ context.Context, file *models.File) (*models.File, error) {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = time.Now().UTC()

	err := r.kv.Update(func(txn *badger.Txn) error {
		if err := kvx.SetJSON(txn, fileKey(file.ID), file); err != nil {
			return err
		}
		return txn.Set(indexKey(file), []byte{})
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *BadgerRepository) GetByID(_ context.Context, id string) (*models.File, error) {
	f := &models.File{}
	if err := r.kv.View(func(txn *badger.Txn) error {
		return kvx.GetJSON(txn, fileKey(id), f)
	}); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *BadgerRepository) ListByFolder(_ context.Context, folderID string) ([]*models.File, error) {
	var result []*models.File
	err := r.kv.View(func(txn *badger.Txn) error {
		var err error
		result, err = loadIndexed(txn, []byte(fileFolderPrefix+folderID+":"))
		return err
	})
	return result, err
}

func (r *BadgerRepository) ListUnfiled(_ context.Context, userID string) ([]*models.File, error) {
	var result []*models.File
	err := r.kv.View(func(txn *badger.Txn) error {
		var err error
		result, err = loadIndexed(txn, []byte(fileUnfiledPrefix+userID+":"))
		return err
	})
	return result, err
}

func loadIndexed(txn *badger.Txn, prefix []byte) ([]*models.File, error) {
	keys, err := kvx.ScanKeys(txn, prefix)
	if err != nil {
		return nil, err
	}

	result := make([]*models.File, 0, len(keys))
	for _, k := range keys {
		id := strings.TrimPrefix(string(k), string(prefix))
		f := &models.File{}
		if err := kvx.GetJSON(txn, fileKey(id), f); err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func deleteFile(txn *badger.Txn, f *models.File) error {
	if err := kvx.Delete(txn, indexKey(f)); err != nil {
		return err
	}
	return kvx.Delete(txn, fileKey(f.ID))
}

func (r *BadgerRepository) Delete(_ context.Context, id string) error {
	return r.kv.Update(func(txn *badger.Txn) error {
		f := &models.File{}
		if err := kvx.GetJSON(txn, fileKey(id), f); err != nil {
			return err
		}
		return deleteFile(txn, f)
	})
}

func (r *BadgerRepository) DeleteByFolder(_ context.Context, folderID string) (int64, error) {
	var n int64
	err := r.kv.Update(func(txn *badger.Txn) error {
		list, err := loadIndexed(txn, []byte(fileFolderPrefix+folderID+":"))
		if err != nil {
			return err
		}
		for _, f := range list {
			if err := deleteFile(txn, f); err != nil {
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
