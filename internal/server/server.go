package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dshills/redline/internal/analysis"
	"github.com/gin-gonic/gin"
)

// Server serves the analysis API.
type Server struct {
	analyzer       *analysis.Analyzer
	provider       string
	model          string
	maxSuggestions int
}

// Options configures a Server.
type Options struct {
	Provider string
	Model    string
	// MaxSuggestions truncates each response when positive.
	MaxSuggestions int
}

// New creates a Server around analyzer.
func New(analyzer *analysis.Analyzer, opts Options) *Server {
	return &Server{
		analyzer:       analyzer,
		provider:       opts.Provider,
		model:          opts.Model,
		maxSuggestions: opts.MaxSuggestions,
	}
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/apply", s.handleApply)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": s.provider,
		"model":    s.model,
	})
}
