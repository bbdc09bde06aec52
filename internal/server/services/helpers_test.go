package services

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.Identity{UserID: "11111111-1111-1111-1111-111111111111"}
	bob   = models.Identity{UserID: "22222222-2222-2222-2222-222222222222"}
)

type env struct {
	m     *repomanager.BadgerRepositoryManager
	blobs *blobstore.LocalStore
	cfg   *config.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := kvx.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MaxUploadSize = 10 << 20
	cfg.PublicBaseURL = "http://drive.test/"

	return &env{m: repomanager.NewBadgerRepositoryManager(db), blobs: store, cfg: cfg}
}

func (e *env) folders() *FolderService {
	return NewFolderService(e.m, e.blobs, logging.Nop())
}

func (e *env) files(t *testing.T) *FileService {
	s := NewFileService(e.m, e.blobs, e.cfg, logging.Nop())
	s.stagingDir = t.TempDir()
	return s
}

var errInjected = errors.New("injected")

// failingFiles fails every Create.
type failingFiles struct {
	files.Repository
}

func (failingFiles) Create(context.Context, *models.File) (*models.File, error) {
	return nil, errInjected
}

// failingManager hands out failingFiles inside and outside transactions.
type failingManager struct {
	repomanager.RepositoryManager
}

func (m failingManager) Files() files.Repository {
	return failingFiles{m.RepositoryManager.Files()}
}

func (m failingManager) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	return m.RepositoryManager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		return fn(ctx, failingManager{tx})
	})
}

// gate parks the first caller of one files method after the call returns,
// inside whatever transaction it runs in, until release.
type gate struct {
	method string
	once   sync.Once
	paused chan struct{}
	resume chan struct{}
}

func newGate(method string) *gate {
	return &gate{method: method, paused: make(chan struct{}), resume: make(chan struct{})}
}

func (g *gate) hold(method string) {
	if method != g.method {
		return
	}
	g.once.Do(func() {
		close(g.paused)
		<-g.resume
	})
}

func (g *gate) wait(t *testing.T) {
	t.Helper()
	select {
	case <-g.paused:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s was never reached", g.method)
	}
}

func (g *gate) release() { close(g.resume) }

type gatedManager struct {
	repomanager.RepositoryManager
	gate *gate
}

func (m gatedManager) Files() files.Repository {
	return gatedFiles{Repository: m.RepositoryManager.Files(), gate: m.gate}
}

func (m gatedManager) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	return m.RepositoryManager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		return fn(ctx, gatedManager{RepositoryManager: tx, gate: m.gate})
	})
}

type gatedFiles struct {
	files.Repository
	gate *gate
}

func (f gatedFiles) Create(ctx context.Context, file *models.File) (*models.File, error) {
	created, err := f.Repository.Create(ctx, file)
	f.gate.hold("Create")
	return created, err
}

func (f gatedFiles) ListByFolder(ctx context.Context, folderID string) ([]*models.File, error) {
	list, err := f.Repository.ListByFolder(ctx, folderID)
	f.gate.hold("ListByFolder")
	return list, err
}

func nopLogger() logging.Logger { return logging.Nop() }

func shareID(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// countBlobs returns the number of regular files under root.
func countBlobs(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}
