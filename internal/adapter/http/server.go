// Package http exposes the dashboard's read-only JSON API alongside the
// operational health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hydair/aqi-dashboard/internal/analytics"
	"github.com/hydair/aqi-dashboard/internal/domain"
	"github.com/hydair/aqi-dashboard/internal/observability"
	"github.com/hydair/aqi-dashboard/internal/view"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// DatasetProvider hands out the canonical dataset, loading it on first
// use. pipeline.Store satisfies this.
type DatasetProvider interface {
	ReadinessChecker
	Dataset(ctx context.Context) (*domain.Dataset, error)
}

// Server exposes the dashboard API over HTTP.
type Server struct {
	httpServer *http.Server
	store      DatasetProvider
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/v1 chart routes plus
// /healthz, /readyz, and /metrics.
func NewServer(addr string, store DatasetProvider, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dataset", s.handleDataset).Methods(http.MethodGet)
	api.HandleFunc("/views", s.handleViews).Methods(http.MethodGet)
	api.HandleFunc("/views/{view}", s.handleView).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{name}", s.handleCategory).Methods(http.MethodGet)

	var h http.Handler = r

	// Recovery (catches panics)
	h = handlers.RecoveryHandler()(h)

	// CORS, so browser dashboards on other origins can read the API
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)(h)

	// Access logging
	h = handlers.LoggingHandler(os.Stdout, h)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleViews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, view.Views())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["view"]

	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	sel := view.Selection{Category: normalizeCategory(r.URL.Query().Get("category"))}
	spec, err := view.Render(name, ds, sel)
	if err != nil {
		s.renderError(w, name, err)
		return
	}

	s.metrics.ChartRequests.WithLabelValues(name).Inc()
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Bands())
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	name := normalizeCategory(mux.Vars(r)["name"])

	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	report, err := analytics.Categorize(ds, name)
	if err != nil {
		var invalid *domain.InvalidCategoryError
		if errors.As(err, &invalid) {
			s.metrics.CategoryQueries.WithLabelValues("unknown").Inc()
			writeJSON(w, http.StatusBadRequest, errorBody{Error: invalid.Error(), Valid: invalid.Valid})
			return
		}
		s.logger.Error("category query failed", "category", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	s.metrics.CategoryQueries.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, report)
}

// dataset fetches the cached dataset, answering 503 when loading fails.
// Reports false when a response has already been written.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*domain.Dataset, bool) {
	ds, err := s.store.Dataset(r.Context())
	if err != nil {
		s.logger.Error("dataset unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return nil, false
	}
	return ds, true
}

func (s *Server) renderError(w http.ResponseWriter, name string, err error) {
	var invalid *domain.InvalidCategoryError
	switch {
	case errors.Is(err, view.ErrUnknownView):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Valid: view.Names()})
	case errors.Is(err, view.ErrCategoryRequired):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Valid: domain.BandNames()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: invalid.Error(), Valid: invalid.Valid})
	default:
		s.logger.Error("view render failed", "view", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

// normalizeCategory canonicalizes a band selection: bands are published
// uppercase, so "good" and "GOOD" select the same band.
func normalizeCategory(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// errorBody is the JSON error shape. Valid, when present, enumerates the
// accepted values for the rejected parameter.
type errorBody struct {
	Error string   `json:"error"`
	Valid []string `json:"valid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
