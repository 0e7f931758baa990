// Package server exposes stored poster documents over HTTP: upload a
// poster to extract it, edit its sections, and download exports.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/thywilljoshua/poster-to-web/internal/convert"
	"github.com/thywilljoshua/poster-to-web/internal/export"
	"github.com/thywilljoshua/poster-to-web/internal/store"
)

// ExtractFunc turns an uploaded file into a document.
type ExtractFunc func(ctx context.Context, path string) (convert.Result, error)

type Config struct {
	Store *store.Store
	// Extract defaults to convert.Run with Convert.
	Extract ExtractFunc
	Convert convert.Config
	// Export holds the default format and style for downloads.
	Export         export.Options
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

type Server struct {
	store     *store.Store
	extract   ExtractFunc
	export    export.Options
	maxUpload int64
	log       logrus.FieldLogger
	router    *gin.Engine
}

func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		store:     cfg.Store,
		extract:   cfg.Extract,
		export:    cfg.Export,
		maxUpload: cfg.MaxUploadBytes,
		log:       log,
	}
	if s.extract == nil {
		conv := cfg.Convert
		if conv.Logger == nil {
			conv.Logger = log
		}
		s.extract = func(ctx context.Context, path string) (convert.Result, error) {
			return convert.Run(ctx, path, conv)
		}
	}
	if s.export.Format == "" {
		s.export.Format = export.Standalone
	}
	if s.export.Logger == nil {
		s.export.Logger = log
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 50 << 20
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.MaxMultipartMemory = s.maxUpload

	r.GET("/health", s.health)

	docs := r.Group("/documents")
	docs.POST("", s.upload)
	docs.GET("", s.list)
	docs.GET("/:id", s.get)
	docs.DELETE("/:id", s.remove)
	docs.POST("/:id/reset", s.reset)
	docs.PUT("/:id/order", s.reorder)
	docs.GET("/:id/export", s.exportDoc)

	docs.POST("/:id/sections", s.addSection)
	docs.PATCH("/:id/sections/:sid", s.patchSection)
	docs.DELETE("/:id/sections/:sid", s.removeSection)
	docs.POST("/:id/sections/:sid/move", s.moveSection)
	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("request")
	}
}
