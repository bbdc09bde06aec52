package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// UploadInput is one incoming file. Size is the size the client declared,
// or a negative value when unknown; the stored size is what was read. A Body
// that implements io.ReadSeeker is stored from its current offset without
// being spooled first.
type UploadInput struct {
	FolderID    *string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type FileService struct {
	repomanager   repomanager.RepositoryManager
	blobs         blobstore.Store
	logger        logging.Logger
	maxUploadSize int64
	// stagingDir holds upload spool files; "" means os.TempDir.
	stagingDir string
}

func NewFileService(m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, logger logging.Logger) *FileService {
	limit := cfg.MaxUploadSize
	if limit <= 0 {
		limit = common.DefaultMaxUploadSize
	}
	return &FileService{
		repomanager:   m,
		blobs:         blobs,
		logger:        logger.With("module", "files"),
		maxUploadSize: limit,
	}
}

func (s *FileService) tooLarge() error {
	return fmt.Errorf("%w: limit is %s", common.ErrPayloadTooLarge, humanize.IBytes(uint64(s.maxUploadSize)))
}

// Upload stores the blob and then its metadata. On any failure neither is
// left behind: a blob whose metadata could not be written is deleted again,
// even when the caller has gone away.
func (s *FileService) Upload(ctx context.Context, identity models.Identity, in UploadInput) (*models.File, error) {
	if in.Size > s.maxUploadSize {
		return nil, s.tooLarge()
	}

	var folderID *string
	if in.FolderID != nil && *in.FolderID != "" {
		if _, err := authorize(ctx, identity, *in.FolderID, s.repomanager.Folders().GetByID); err != nil {
			return nil, err
		}
		folderID = in.FolderID
	}

	body, size, release, err := s.source(ctx, in.Body)
	if err != nil {
		return nil, err
	}
	defer release()

	contentType := in.ContentType
	if contentType == "" {
		if contentType, err = sniff(body); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
	}

	location, err := s.blobs.Put(ctx, blobstore.PutInput{
		OwnerID:     identity.UserID,
		FolderID:    folderID,
		Filename:    in.Filename,
		ContentType: contentType,
		Size:        size,
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	file := &models.File{
		Name:     in.Filename,
		Size:     size,
		MimeType: contentType,
		Location: location,
		UserID:   identity.UserID,
		FolderID: folderID,
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if folderID != nil {
			if _, err := authorize(ctx, identity, *folderID, tx.Folders().GetByID); err != nil {
				return err
			}
			// Serializes against a cascade delete of the same folder.
			if err := tx.Folders().Touch(ctx, *folderID); err != nil {
				return err
			}
		}
		created, err := tx.Files().Create(ctx, file)
		if err != nil {
			return err
		}
		file = created
		return nil
	})
	if err != nil {
		s.compensate(ctx, location, err)
		return nil, err
	}

	s.logger.Info(ctx, "file uploaded", "file_id", file.ID, "size", humanize.IBytes(uint64(size)), "mime", contentType)
	return file, nil
}

// source returns body as a seekable stream with its remaining length. A
// body that can already seek is used in place; anything else is spooled.
func (s *FileService) source(ctx context.Context, body io.Reader) (io.ReadSeeker, int64, func(), error) {
	if rs, ok := body.(io.ReadSeeker); ok {
		if start, err := rs.Seek(0, io.SeekCurrent); err == nil {
			end, err := rs.Seek(0, io.SeekEnd)
			if err == nil {
				_, err = rs.Seek(start, io.SeekStart)
			}
			if err != nil {
				return nil, 0, nil, fmt.Errorf("read upload: %w", err)
			}
			if end-start > s.maxUploadSize {
				return nil, 0, nil, s.tooLarge()
			}
			return rs, end - start, func() {}, nil
		}
	}

	tmp, n, err := s.stage(body)
	if err != nil {
		return nil, 0, nil, err
	}
	return tmp, n, func() { s.unstage(ctx, tmp) }, nil
}

// stage spools body into a temp file, reading at most one byte past the
// ceiling so oversize streams are detected without buffering them.
func (s *FileService) stage(body io.Reader) (*os.File, int64, error) {
	tmp, err := os.CreateTemp(s.stagingDir, "upload-*")
	if err != nil {
		return nil, 0, fmt.Errorf("%w: staging: %w", common.ErrStorage, err)
	}

	n, err := io.Copy(tmp, io.LimitReader(body, s.maxUploadSize+1))
	if err == nil && n > s.maxUploadSize {
		err = s.tooLarge()
	}
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if errors.Is(err, common.ErrPayloadTooLarge) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("read upload: %w", err)
	}
	return tmp, n, nil
}

func (s *FileService) unstage(ctx context.Context, f *os.File) {
	_ = f.Close()
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn(ctx, "staging cleanup failed", "path", f.Name(), "error", err)
	}
}

// sniff detects the content type and rewinds rs to where it was.
func sniff(rs io.ReadSeeker) (string, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", err
	}
	mt, err := mimetype.DetectReader(rs)
	if err != nil {
		return "", err
	}
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

func (s *FileService) compensate(ctx context.Context, location string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.blobs.Delete(ctx, location); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
		s.logger.Error(ctx, "orphaned blob after failed upload", "location", location, "cause", cause, "error", err)
		return
	}
	s.logger.Warn(ctx, "upload rolled back", "location", location, "cause", cause)
}

func (s *FileService) Get(ctx context.Context, identity models.Identity, id string) (*models.File, error) {
	return authorize(ctx, identity, id, s.repomanager.Files().GetByID)
}

// Download returns the file with either a readable body or a redirect URL.
// A record whose blob has vanished is reported as not found.
func (s *FileService) Download(ctx context.Context, identity models.Identity, id string) (*models.File, *blobstore.Object, error) {
	file, err := authorize(ctx, identity, id, s.repomanager.Files().GetByID)
	if err != nil {
		return nil, nil, err
	}

	obj, err := openBlob(ctx, s.blobs, s.logger, file)
	if err != nil {
		return nil, nil, err
	}
	return file, obj, nil
}

func openBlob(ctx context.Context, blobs blobstore.Store, logger logging.Logger, file *models.File) (*blobstore.Object, error) {
	obj, err := blobs.Get(ctx, file.Location)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			logger.Warn(ctx, "file record without blob", "file_id", file.ID, "location", file.Location)
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return obj, nil
}

// Delete removes the record, then the blob best-effort.
func (s *FileService) Delete(ctx context.Context, identity models.Identity, id string) error {
	var location string

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		file, err := authorize(ctx, identity, id, tx.Files().GetByID)
		if err != nil {
			return err
		}
		location = file.Location
		return tx.Files().Delete(ctx, file.ID)
	})
	if err != nil {
		return err
	}

	purgeBlobs(ctx, s.blobs, s.logger, []string{location})
	return nil
}

// ListUnfiled returns the caller's files that sit in no folder.
func (s *FileService) ListUnfiled(ctx context.Context, identity models.Identity) ([]*models.File, error) {
	files, err := s.repomanager.Files().ListUnfiled(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return files, nil
}
