// Package httpapi exposes the drive services over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the upload ceiling for form
// boundaries and the other form fields.
const multipartOverhead = 1 << 20

type HTTPServer struct {
	address         string
	shutdownTimeout time.Duration
	maxUploadSize   int64
	router          *gin.Engine
	users           *services.UserService
	folders         *services.FolderService
	files           *services.FileService
	shares          *services.ShareService
	logger          logging.Logger
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *services.UserService, fs *services.FolderService, fis *services.FileService, ss *services.ShareService) *HTTPServer {
	s := &HTTPServer{
		address:         cfg.HTTPAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		maxUploadSize:   cfg.MaxUploadSize,
		users:           us,
		folders:         fs,
		files:           fis,
		shares:          ss,
		logger:          l.With("module", "http_server"),
	}
	s.router = s.routes(newIPRateLimiter(cfg.ShareRateLimit))
	return s
}

func (s *HTTPServer) routes(limiter *ipRateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	files := r.Group("/files", s.authRequired())
	files.POST("/upload", s.uploadFile)
	files.GET("", s.listUnfiled)
	files.GET("/:id", s.getFile)
	files.GET("/:id/download", s.downloadFile)
	files.DELETE("/:id", s.deleteFile)

	folders := r.Group("/folders", s.authRequired())
	folders.POST("", s.createFolder)
	folders.GET("", s.listFolders)
	folders.GET("/:id", s.getFolder)
	folders.PUT("/:id", s.renameFolder)
	folders.DELETE("/:id", s.deleteFolder)
	folders.POST("/:id/share", s.createShare)

	share := r.Group("/share", limiter.middleware())
	share.GET("/:id", s.accessShare)
	share.GET("/:id/files/:fileId", s.downloadSharedFile)

	return r
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
