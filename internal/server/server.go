// Package server exposes stored wallet scores over a read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/storage"
)

// Listing limits for GET /api/v1/wallets.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ScoreReader serves score lookups. Implemented by storage.WalletScoreStore
// and cache.ReadThrough.
type ScoreReader interface {
	GetByWallet(ctx context.Context, wallet string) (*domain.WalletScoreRecord, error)
	GetTop(ctx context.Context, limit int) ([]*domain.WalletScoreRecord, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Options configures a Server.
type Options struct {
	Scores         ScoreReader
	Checks         map[string]HealthCheck // e.g. "postgres", "redis"
	Metrics        *observability.Metrics // optional
	Gatherer       prometheus.Gatherer    // default: prometheus.DefaultGatherer
	AllowedOrigins []string               // default: any origin
	Logger         zerolog.Logger
	Clock          func() time.Time
}

// Server holds the API dependencies.
type Server struct {
	scores   ScoreReader
	checks   map[string]HealthCheck
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	origins  []string
	logger   zerolog.Logger
	clock    func() time.Time
	started  time.Time
}

// New creates a server.
func New(opts Options) *Server {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		scores:   opts.Scores,
		checks:   opts.Checks,
		metrics:  opts.Metrics,
		gatherer: gatherer,
		origins:  opts.AllowedOrigins,
		logger:   opts.Logger,
		clock:    clock,
		started:  clock(),
	}
}

// Handler builds the router wrapped in CORS.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/wallets", s.handleListWallets).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{address}", s.handleGetWallet).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.HandlerFor(s.gatherer)).Methods(http.MethodGet)

	router.Use(s.instrument)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown error")
			return err
		}
		return nil
	}
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.RecordHTTPRequest(route, rec.code)
		s.logger.Debug().Str("method", r.Method).Str("route", route).Int("code", rec.code).Msg("request")
	})
}

// HealthResponse is the JSON response for /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Uptime: s.clock().Sub(s.started).Truncate(time.Second).String(),
	}
	code := http.StatusOK

	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
		names := make([]string, 0, len(s.checks))
		for name := range s.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, name := range names {
			if err := s.checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	writeJSON(w, code, resp)
}

// WalletListResponse is the JSON response for GET /api/v1/wallets.
type WalletListResponse struct {
	Wallets []*domain.WalletScoreRecord `json:"wallets"`
	Count   int                         `json:"count"`
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > MaxLimit {
			n = MaxLimit
		}
		limit = n
	}

	recs, err := s.scores.GetTop(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list wallets failed")
		writeError(w, http.StatusInternalServerError, "failed to load scores")
		return
	}
	if recs == nil {
		recs = []*domain.WalletScoreRecord{}
	}
	writeJSON(w, http.StatusOK, WalletListResponse{Wallets: recs, Count: len(recs)})
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	rec, err := s.scores.GetByWallet(r.Context(), address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "wallet not found")
			return
		}
		s.logger.Error().Err(err).Str("wallet", address).Msg("get wallet failed")
		writeError(w, http.StatusInternalServerError, "failed to load score")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
