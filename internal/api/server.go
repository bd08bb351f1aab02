// Package api serves the filtered rows and aggregates over HTTP as JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/fundview-dev/fundview/internal/config"
	"github.com/fundview-dev/fundview/internal/feed"
	"github.com/fundview-dev/fundview/internal/loadlog"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Logger *slog.Logger
	// HistoryPath, when set, receives one load history entry per reload.
	HistoryPath string
}

// Server exposes the current feed snapshot of a Loader.
type Server struct {
	cfg         *config.Config
	loader      *feed.Loader
	logger      *slog.Logger
	historyPath string
	now         func() time.Time
}

// New creates a Server.
func New(cfg *config.Config, loader *feed.Loader, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:         cfg,
		loader:      loader,
		logger:      logger.With(slog.String("component", "api")),
		historyPath: opts.HistoryPath,
		now:         time.Now,
	}
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", s.health)
		r.Get("/funds", s.funds)
		r.Post("/reload", s.reload)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSnapshot)
			r.Get("/rows", s.rows)
			r.Get("/summary", s.summary)
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving api: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down api: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) requireSnapshot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.loader.Current() == nil {
			s.fail(w, r, http.StatusServiceUnavailable, errors.New("feed not loaded yet"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recordLoad appends a load history entry when history is enabled.
func (s *Server) recordLoad(ctx context.Context, snap *feed.Snapshot, loadErr error) {
	if s.historyPath == "" {
		return
	}
	entry := loadlog.EntryFor(s.loader.Source(), snap, loadErr, s.now())
	if err := loadlog.Append(s.historyPath, []loadlog.Entry{entry}); err != nil {
		s.logger.WarnContext(ctx, "recording load history failed", slog.String("error", err.Error()))
	}
}
