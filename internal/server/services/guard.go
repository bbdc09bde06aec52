// Package services holds the drive's business rules: ownership checks, the
// upload pipeline, cascade deletes and share access. Services depend only on
// the repository manager and the blob store contract.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type owned interface {
	OwnerID() string
}

// authorize loads a resource and returns it only to its owner. A missing
// resource and a foreign one both yield common.ErrorNotFound.
func authorize[T owned](ctx context.Context, identity models.Identity, id string, get func(context.Context, string) (T, error)) (T, error) {
	var zero T

	res, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return zero, common.ErrorNotFound
		}
		return zero, err
	}

	if identity.UserID == "" || res.OwnerID() != identity.UserID {
		return zero, common.ErrorNotFound
	}
	return res, nil
}
