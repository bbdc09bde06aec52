// Package blobstore persists uploaded bytes behind one contract with a local
// filesystem backend and an S3 backend. Callers only ever see the opaque
// location string a backend returns from Put.
package blobstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/filex"
	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a location points at nothing.
var ErrBlobNotFound = errors.New("blob not found")

// PutInput describes one blob to store. Body must be an io.ReadSeeker for the
// S3 backend, which signs the payload before sending it.
type PutInput struct {
	OwnerID     string
	FolderID    *string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object is the readable side of a stored blob. Exactly one of Body and
// RedirectURL is set; a non-nil Body must be closed by the caller.
type Object struct {
	Body        io.ReadSeekCloser
	RedirectURL string
	Size        int64
	ModTime     time.Time
}

// Store is implemented by LocalStore and S3Store.
type Store interface {
	Put(ctx context.Context, in PutInput) (string, error)
	Get(ctx context.Context, location string) (*Object, error)
	// Delete removes the blob, or returns ErrBlobNotFound.
	Delete(ctx context.Context, location string) error
	// URL is the address a browser can fetch the blob from.
	URL(ctx context.Context, location string) (string, error)
}

// StorageKey builds "{owner}/{folder|general}/{millis}-{rand}-{name}". The
// random segment keeps same-instant uploads of one filename apart.
func StorageKey(in PutInput, now time.Time) string {
	folder := common.GeneralFolderKey
	if in.FolderID != nil && *in.FolderID != "" {
		folder = *in.FolderID
	}

	id := uuid.New()
	return fmt.Sprintf("%s/%s/%d-%s-%s",
		filex.SafeName(in.OwnerID),
		filex.SafeName(folder),
		now.UnixMilli(),
		hex.EncodeToString(id[:4]),
		filex.SafeName(in.Filename),
	)
}
