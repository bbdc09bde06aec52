package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/microcosm-cc/bluemonday"
)

const maxFolderNameLen = 255

type FolderService struct {
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
	policy      *bluemonday.Policy
}

func NewFolderService(m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *FolderService {
	return &FolderService{
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "folders"),
		policy:      bluemonday.StrictPolicy(),
	}
}

// cleanName strips markup and surrounding space from a folder name.
func (s *FolderService) cleanName(name string) (string, error) {
	name = strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(name)))
	if name == "" {
		return "", fmt.Errorf("%w: folder name is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxFolderNameLen {
		return "", fmt.Errorf("%w: folder name longer than %d characters", common.ErrValidation, maxFolderNameLen)
	}
	return name, nil
}

func (s *FolderService) Create(ctx context.Context, identity models.Identity, name string) (*models.Folder, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	folder, err := s.repomanager.Folders().Create(ctx, &models.Folder{Name: name, UserID: identity.UserID})
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	folder.Files = []*models.File{}
	return folder, nil
}

// List returns the caller's folders, each with its files.
func (s *FolderService) List(ctx context.Context, identity models.Identity) ([]*models.Folder, error) {
	folders, err := s.repomanager.Folders().ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}

	files := s.repomanager.Files()
	for _, f := range folders {
		if f.Files, err = files.ListByFolder(ctx, f.ID); err != nil {
			return nil, fmt.Errorf("error listing files: %w", err)
		}
	}
	return folders, nil
}

func (s *FolderService) Get(ctx context.Context, identity models.Identity, id string) (*models.Folder, error) {
	folder, err := authorize(ctx, identity, id, s.repomanager.Folders().GetByID)
	if err != nil {
		return nil, err
	}

	if folder.Files, err = s.repomanager.Files().ListByFolder(ctx, folder.ID); err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return folder, nil
}

func (s *FolderService) Rename(ctx context.Context, identity models.Identity, id, name string) (*models.Folder, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	var folder *models.Folder
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if _, err := authorize(ctx, identity, id, tx.Folders().GetByID); err != nil {
			return err
		}
		renamed, err := tx.Folders().Rename(ctx, id, name)
		folder = renamed
		return err
	})
	if err != nil {
		return nil, err
	}

	if folder.Files, err = s.repomanager.Files().ListByFolder(ctx, folder.ID); err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return folder, nil
}

// Delete removes the folder, its files and its shares in one transaction,
// then deletes the file blobs. Once it returns nil no record referencing the
// folder is readable, whatever happens to blob cleanup.
func (s *FolderService) Delete(ctx context.Context, identity models.Identity, id string) error {
	var locations []string

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		folder, err := authorize(ctx, identity, id, tx.Folders().GetByID)
		if err != nil {
			return err
		}
		if err := tx.Folders().Touch(ctx, folder.ID); err != nil {
			return err
		}

		files, err := tx.Files().ListByFolder(ctx, folder.ID)
		if err != nil {
			return err
		}
		if _, err := tx.Files().DeleteByFolder(ctx, folder.ID); err != nil {
			return err
		}
		if _, err := tx.Shares().DeleteByFolder(ctx, folder.ID); err != nil {
			return err
		}
		if err := tx.Folders().Delete(ctx, folder.ID); err != nil {
			return err
		}

		locations = make([]string, 0, len(files))
		for _, f := range files {
			locations = append(locations, f.Location)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "folder deleted", "folder_id", id, "files", len(locations))
	purgeBlobs(ctx, s.blobs, s.logger, locations)
	return nil
}
