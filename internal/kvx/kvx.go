// Package kvx is the badger counterpart of dbx: it lets repositories run
// either inside an ambient transaction or in one of their own, and provides
// JSON value helpers.
package kvx

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophdrive/internal/common"
)

// Runner executes badger reads and writes. A zero txn means every call opens
// its own transaction on db.
type Runner struct {
	db  *badger.DB
	txn *badger.Txn
}

// NewRunner returns a Runner that opens a transaction per call.
func NewRunner(db *badger.DB) Runner {
	return Runner{db: db}
}

// View runs fn in a read-only transaction, or in the ambient one.
func (r Runner) View(fn func(txn *badger.Txn) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}
	return r.db.View(fn)
}

// Update runs fn in a read-write transaction, or in the ambient one.
func (r Runner) Update(fn func(txn *badger.Txn) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}
	return r.db.Update(fn)
}

// WithTxn runs fn with a Runner bound to a single read-write transaction that
// commits only if fn succeeds.
func WithTxn(db *badger.DB, fn func(r Runner) error) error {
	return db.Update(func(txn *badger.Txn) error {
		return fn(Runner{db: db, txn: txn})
	})
}

// GetJSON loads key into dst. A missing key yields common.ErrorNotFound.
func GetJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("badger get: %w", err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

// SetJSON stores v under key.
func SetJSON(txn *badger.Txn, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, b)
}

// Exists reports whether key is present.
func Exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger get: %w", err)
	}
	return true, nil
}

// Delete removes key; removing an absent key is not an error.
func Delete(txn *badger.Txn, key []byte) error {
	if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// ScanKeys returns copies of all keys that start with prefix.
func ScanKeys(txn *badger.Txn, prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// OpenInMemory opens a throwaway in-memory badger database.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

// Open opens (or creates) a badger database in dir.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", dir, err)
	}
	return db, nil
}
