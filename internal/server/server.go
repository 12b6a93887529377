// Package server exposes a backend.Client over the search index HTTP API.
// It backs `cashsearch serve` so the client can run against a local fixture.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/model"
)

const (
	// maxBodyBytes bounds a search request body.
	maxBodyBytes = 1 << 16

	shutdownTimeout = 5 * time.Second
)

// Server routes index API calls to a backend.Client.
type Server struct {
	client backend.Client
	router chi.Router
	// suggestions caches autocomplete and spelling responses; nil disables it.
	suggestions *cache.Cache
}

// Option configures a Server.
type Option func(*Server)

// WithSuggestionCache keeps autocomplete and spelling responses for ttl.
// Typing produces the same prefixes over and over, and spelling lookups scan
// the whole vocabulary.
func WithSuggestionCache(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.suggestions = cache.New(ttl, 2*ttl)
		}
	}
}

// New creates a server for client with routes mounted under /api.
func New(client backend.Client, opts ...Option) *Server {
	s := &Server{client: client}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/search", func(r chi.Router) {
		r.Post("/", s.handleSearch)
		r.Get("/autocomplete", s.handleAutocomplete)
		r.Get("/spelling", s.handleSpelling)
		r.Get("/fuzzy", s.handleFuzzy)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Search API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		slog.Info("Search API stopped")
		return nil
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Page < 0 || req.Size < 0 {
		writeError(w, http.StatusBadRequest, "page and size must not be negative")
		return
	}
	if req.Size == 0 {
		req.Size = model.DefaultPageSize
	}

	resp, err := s.client.Search(r.Context(), req)
	if err != nil {
		s.fail(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if strings.TrimSpace(prefix) == "" {
		writeError(w, http.StatusBadRequest, "prefix is required")
		return
	}
	limit, ok := intParam(w, r, "limit", model.DefaultAutocompleteLimit)
	if !ok {
		return
	}

	key := fmt.Sprintf("autocomplete|%d|%s", limit, prefix)
	if cached, found := s.cached(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	resp, err := s.client.Autocomplete(r.Context(), prefix, limit)
	if err != nil {
		s.fail(w, r, "autocomplete", err)
		return
	}
	s.store(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSpelling(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if strings.TrimSpace(term) == "" {
		writeError(w, http.StatusBadRequest, "term is required")
		return
	}
	limit, ok := intParam(w, r, "limit", model.DefaultSpellingLimit)
	if !ok {
		return
	}

	key := fmt.Sprintf("spelling|%d|%s", limit, term)
	if cached, found := s.cached(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	resp, err := s.client.SpellingSuggestions(r.Context(), term, limit)
	if err != nil {
		s.fail(w, r, "spelling", err)
		return
	}
	s.store(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFuzzy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	threshold := model.DefaultFuzzyThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			writeError(w, http.StatusBadRequest, "threshold must be between 0 and 1")
			return
		}
		threshold = parsed
	}

	results, err := s.client.FuzzySearch(r.Context(), query, threshold)
	if err != nil {
		s.fail(w, r, "fuzzy search", err)
		return
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) cached(key string) (any, bool) {
	if s.suggestions == nil {
		return nil, false
	}
	return s.suggestions.Get(key)
}

func (s *Server) store(key string, v any) {
	if s.suggestions != nil {
		s.suggestions.Set(key, v, cache.DefaultExpiration)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("Search API call failed",
		"op", op,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

// intParam reads a positive integer query parameter, writing a 400 when it is malformed.
func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
