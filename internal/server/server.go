// Package server exposes the aggregate views of the current dataset over
// a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/churnlens-cli/internal/analysis"
	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

// maxUploadBytes caps the size of an uploaded dataset.
const maxUploadBytes = 32 << 20

// Options configures a Server.
type Options struct {
	Addr        string
	CORSOrigins []string
	PageSize    int
	Views       analysis.DashboardOptions

	// Store, when set, receives every uploaded snapshot and is cleared on reset.
	Store  *session.Store
	Logger *slog.Logger
}

// Server serves one dataset snapshot at a time. Uploads replace the
// snapshot atomically; readers never see a partially built dataset.
type Server struct {
	opts    Options
	log     *slog.Logger
	current atomic.Pointer[session.Snapshot]
	cache   *viewCache
}

// New returns a Server. snap may be nil.
func New(opts Options, snap *session.Snapshot) *Server {
	if opts.PageSize == 0 {
		opts.PageSize = 10
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{opts: opts, log: log.With(slog.String("component", "server")), cache: newViewCache()}
	if snap != nil {
		s.current.Store(snap)
	}
	return s
}

// Snapshot returns the current snapshot or nil.
func (s *Server) Snapshot() *session.Snapshot { return s.current.Load() }

// Replace swaps in snap (nil clears) and drops memoized views.
func (s *Server) Replace(snap *session.Snapshot) {
	s.current.Store(snap)
	s.cache.reset()
}

// dataset returns the current dataset and its snapshot ID.
func (s *Server) dataset() (*dataset.Dataset, string) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ""
	}
	return snap.Dataset, snap.ID
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/dataset", func(r chi.Router) {
			r.Get("/status", s.status)
			r.Post("/", s.upload)
			r.Delete("/", s.reset)
		})
		r.Get("/summary", s.summary)
		r.Get("/columns", s.columns)

		r.Route("/views", func(r chi.Router) {
			r.Get("/risk", s.riskView)
			r.Get("/pyramid", s.pyramidView)
			r.Get("/age-groups", s.ageGroupsView)
			r.Get("/dashboard", s.dashboardView)
			r.Get("/histogram/{column}", s.histogramView)
			r.Get("/categories/{column}", s.categoriesView)
			r.Get("/churn-by-category/{column}", s.churnByCategoryView)
			r.Get("/avg-churn/{column}", s.avgChurnView)
			r.Get("/scatter", s.scatterView)
		})

		r.Get("/customers", s.customers)
		r.Get("/customers/{index}", s.customer)
		r.Get("/export.csv", s.exportCSV)
		r.Get("/export.xlsx", s.exportXLSX)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Response is the envelope of every JSON reply.
type Response struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   any    `json:"data,omitempty"`
}

func ok(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, Response{Status: http.StatusOK, Msg: "ok", Data: data})
}

func fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	render.Status(r, code)
	render.JSON(w, r, Response{Status: code, Msg: err.Error()})
}
