package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

// ShareCache is an optional read-through cache of share records. Get reports
// a miss with common.ErrorNotFound.
type ShareCache interface {
	Get(ctx context.Context, id string) (*models.SharedFolder, error)
	Set(ctx context.Context, share *models.SharedFolder, ttl time.Duration) error
}

type ShareService struct {
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	cache       ShareCache
	logger      logging.Logger
	baseURL     string
	now         func() time.Time
}

// NewShareService builds the service; cache may be nil.
func NewShareService(m repomanager.RepositoryManager, blobs blobstore.Store, cache ShareCache, cfg *config.Config, logger logging.Logger) *ShareService {
	return &ShareService{
		repomanager: m,
		blobs:       blobs,
		cache:       cache,
		logger:      logger.With("module", "shares"),
		baseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:         time.Now,
	}
}

// MaxShareDays is the longest share lifetime Create accepts.
const MaxShareDays = 3650

// ParseDurationDays reads the leading decimal digits of raw ("7d" is 7).
// Missing, non-numeric or non-positive input means one day. Digits too large
// for an int come back as MaxShareDays+1 so Create rejects them.
func ParseDurationDays(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	days, err := strconv.Atoi(raw[:end])
	if errors.Is(err, strconv.ErrRange) {
		return MaxShareDays + 1
	}
	if err != nil || days < 1 {
		return 1
	}
	return days
}

// Create issues a share on one of the caller's folders. Expiry is counted
// in calendar days of the server's local time.
func (s *ShareService) Create(ctx context.Context, identity models.Identity, folderID string, durationDays int) (*models.ShareLink, error) {
	if durationDays < 1 {
		durationDays = 1
	}
	if durationDays > MaxShareDays {
		return nil, fmt.Errorf("%w: duration is limited to %d days", common.ErrValidation, MaxShareDays)
	}

	folder, err := authorize(ctx, identity, folderID, s.repomanager.Folders().GetByID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	share, err := s.repomanager.Shares().Create(ctx, &models.SharedFolder{
		FolderID:  folder.ID,
		ExpiresAt: now.AddDate(0, 0, durationDays),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating share: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, share, share.ExpiresAt.Sub(now)); err != nil {
			s.logger.Warn(ctx, "share cache set failed", "share_id", share.ID, "error", err)
		}
	}

	s.logger.Info(ctx, "folder shared", "folder_id", folder.ID, "share_id", share.ID, "expires_at", share.ExpiresAt)
	return &models.ShareLink{
		ShareURL:  s.baseURL + "/share/" + share.ID,
		ExpiresAt: share.ExpiresAt,
	}, nil
}

func (s *ShareService) loadShare(ctx context.Context, id string) (*models.SharedFolder, error) {
	if s.cache != nil {
		share, err := s.cache.Get(ctx, id)
		if err == nil {
			return share, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "share cache get failed", "share_id", id, "error", err)
		}
	}

	share, err := s.repomanager.Shares().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, share, share.ExpiresAt.Sub(s.now())); err != nil {
			s.logger.Warn(ctx, "share cache set failed", "share_id", id, "error", err)
		}
	}
	return share, nil
}

// open resolves a live share and its folder. Unknown, expired and dangling
// shares are indistinguishable to the caller.
func (s *ShareService) open(ctx context.Context, shareID string) (*models.SharedFolder, *models.Folder, error) {
	share, err := s.loadShare(ctx, shareID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrNotFoundOrExpired
		}
		return nil, nil, err
	}

	if share.Expired(s.now()) {
		return nil, nil, common.ErrNotFoundOrExpired
	}

	folder, err := s.repomanager.Folders().GetByID(ctx, share.FolderID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrNotFoundOrExpired
		}
		return nil, nil, err
	}
	return share, folder, nil
}

// Access returns the folder's current contents to anyone holding the share
// id.
func (s *ShareService) Access(ctx context.Context, shareID string) (*models.SharedFolderView, error) {
	share, folder, err := s.open(ctx, shareID)
	if err != nil {
		return nil, err
	}

	files, err := s.repomanager.Files().ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}

	view := &models.SharedFolderView{
		FolderName: folder.Name,
		Files:      make([]*models.SharedFile, 0, len(files)),
		ExpiresAt:  share.ExpiresAt,
	}
	for _, f := range files {
		url, err := s.blobs.URL(ctx, f.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		view.Files = append(view.Files, &models.SharedFile{
			ID:          f.ID,
			Name:        f.Name,
			Size:        f.Size,
			Location:    url,
			DownloadURL: s.baseURL + "/share/" + share.ID + "/files/" + f.ID,
			CreatedAt:   f.CreatedAt,
		})
	}
	return view, nil
}

// OpenFile returns a file of a live share together with its blob. Files
// outside the shared folder are reported like an expired share.
func (s *ShareService) OpenFile(ctx context.Context, shareID, fileID string) (*models.File, *blobstore.Object, error) {
	_, folder, err := s.open(ctx, shareID)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.repomanager.Files().GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrNotFoundOrExpired
		}
		return nil, nil, err
	}
	if !file.InFolder(folder.ID) {
		return nil, nil, common.ErrNotFoundOrExpired
	}

	obj, err := openBlob(ctx, s.blobs, s.logger, file)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrNotFoundOrExpired
		}
		return nil, nil, err
	}
	return file, obj, nil
}
