// Package server assembles the gophdrive server: it opens the configured
// metadata and blob backends, builds the services and runs the HTTP API and
// the share janitor until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/kvx"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/httpapi"
	"github.com/dmitrijs2005/gophdrive/internal/server/janitor"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
	"github.com/dmitrijs2005/gophdrive/internal/server/sharecache"
	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	httpServer *httpapi.HTTPServer
	janitor    *janitor.Janitor
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := NewLogger(c)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	m, closeMeta, err := OpenRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("metadata store init error: %w", err)
	}
	app.closers = append(app.closers, closeMeta)

	blobs, err := openBlobStore(ctx, c)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	var cache services.ShareCache
	if c.RedisAddr != "" {
		rc, client, err := sharecache.NewRedisCache(ctx, sharecache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("share cache init error: %w", err)
		}
		cache = rc
		app.closers = append(app.closers, client.Close)
	}

	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app.httpServer = httpapi.NewHTTPServer(c, logger,
		services.NewUserService(m, c, logger),
		services.NewFolderService(m, blobs, logger),
		services.NewFileService(m, blobs, c, logger),
		services.NewShareService(m, blobs, cache, c, logger),
	)
	app.janitor = janitor.New(m, c.JanitorInterval, c.ShareRetention, logger)

	return app, nil
}

// NewLogger returns a zap logger with a rolling file sink when a log file is
// configured and a JSON slog logger on stdout otherwise.
func NewLogger(c *config.Config) (logging.Logger, error) {
	if c.LogFile == "" {
		return logging.NewJSONSlogLogger(os.Stdout, c.LogLevel), nil
	}
	return logging.NewZapLogger(logging.ZapOptions{
		Level:      c.LogLevel,
		FilePath:   c.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	})
}

// OpenRepositoryManager opens the configured metadata backend. Postgres is
// migrated before use. The returned func releases the backend.
func OpenRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, func() error, error) {
	switch c.MetadataBackend {
	case config.MetadataBadger:
		db, err := kvx.Open(c.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return repomanager.NewBadgerRepositoryManager(db), db.Close, nil

	case config.MetadataPostgres:
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pingWithRetry(ctx, db, logger, retry.WithMaxRetries(6, retry.NewExponential(500*time.Millisecond))); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		m := repomanager.NewPostgresRepositoryManager(db)
		if err := m.RunMigrations(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return m, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown metadata backend %q", c.MetadataBackend)
	}
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// pingWithRetry waits for the database to accept connections, which matters
// when it starts alongside the server.
func pingWithRetry(ctx context.Context, db pinger, logger logging.Logger, backoff retry.Backoff) error {
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func openBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BlobLocal:
		return blobstore.NewLocalStore(c.LocalRoot)
	case config.BlobS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Region:        c.S3Region,
			Endpoint:      c.S3BaseEndpoint,
			AccessKey:     c.S3RootUser,
			SecretKey:     c.S3RootPassword,
			Bucket:        c.S3Bucket,
			PublicBaseURL: c.S3PublicBaseURL,
			PresignTTL:    c.S3PresignTTL,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or a component fails.
// Backends are closed before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(ctx) })
	g.Go(func() error { return app.janitor.Run(ctx) })

	err := g.Wait()
	if cerr := app.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Close releases backends in reverse order of opening.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
