package users

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/google/uuid"
)

const (
	userPrefix  = "user:"
	emailPrefix = "user-email:"
)

// record is the stored form of a user; models.User hides the hash from JSON.
type record struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *record) user() *models.User {
	return &models.User{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

type BadgerRepository struct {
	kv kvx.Runner
}

func NewBadgerRepository(kv kvx.Runner) *BadgerRepository {
	return &BadgerRepository{kv: kv}
}

func userKey(id string) []byte     { return []byte(userPrefix + id) }
func emailKey(email string) []byte { return []byte(emailPrefix + email) }

func (r *BadgerRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()

	err := r.kv.Update(func(txn *badger.Txn) error {
		taken, err := kvx.Exists(txn, emailKey(user.Email))
		if err != nil {
			return err
		}
		if taken {
			return common.ErrAlreadyExists
		}
		rec := &record{ID: user.ID, Email: user.Email, PasswordHash: user.PasswordHash, CreatedAt: user.CreatedAt}
		if err := kvx.SetJSON(txn, userKey(user.ID), rec); err != nil {
			return err
		}
		return txn.Set(emailKey(user.Email), []byte(user.ID))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *BadgerRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var id string
	err := r.kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return common.ErrorNotFound
			}
			return err
		}
		b, err := item.ValueCopy(nil)
		id = string(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *BadgerRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	rec := &record{}
	err := r.kv.View(func(txn *badger.Txn) error {
		return kvx.GetJSON(txn, userKey(id), rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}
