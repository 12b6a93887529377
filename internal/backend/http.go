package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is where the index API is served unless configured otherwise.
const DefaultBaseURL = "http://localhost:8080/api"

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 512

// Config configures an HTTPClient.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	// RateLimit is the sustained number of requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
}

// HTTPClient implements Client over HTTP+JSON.
type HTTPClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewHTTPClient creates a client for the index API at cfg.BaseURL.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid backend URL %q", common.ErrInvalidConfig, base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HTTPClient{
		httpClient: httpClient,
		limiter:    limiter,
		baseURL:    strings.TrimRight(base, "/"),
	}, nil
}

// Search posts the request body to /search.
func (c *HTTPClient) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.SearchResponse{}, fmt.Errorf("%w: failed to marshal request: %v", common.ErrBackend, err)
	}

	var resp model.SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search", nil, body, &resp); err != nil {
		return model.SearchResponse{}, err
	}
	return resp, nil
}

// Autocomplete fetches completions for prefix.
func (c *HTTPClient) Autocomplete(ctx context.Context, prefix string, limit int) (model.AutocompleteResponse, error) {
	if limit <= 0 {
		limit = model.DefaultAutocompleteLimit
	}
	params := url.Values{}
	params.Set("prefix", prefix)
	params.Set("limit", strconv.Itoa(limit))

	var resp model.AutocompleteResponse
	if err := c.do(ctx, http.MethodGet, "/search/autocomplete", params, nil, &resp); err != nil {
		return model.AutocompleteResponse{}, err
	}
	return resp, nil
}

// SpellingSuggestions fetches corrections for a possibly misspelled term.
func (c *HTTPClient) SpellingSuggestions(ctx context.Context, term string, limit int) (model.SpellingResponse, error) {
	if limit <= 0 {
		limit = model.DefaultSpellingLimit
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("limit", strconv.Itoa(limit))

	var resp model.SpellingResponse
	if err := c.do(ctx, http.MethodGet, "/search/spelling", params, nil, &resp); err != nil {
		return model.SpellingResponse{}, err
	}
	return resp, nil
}

// FuzzySearch runs a similarity search with the given threshold.
func (c *HTTPClient) FuzzySearch(ctx context.Context, query string, threshold float64) ([]model.SearchResult, error) {
	if threshold <= 0 {
		threshold = model.DefaultFuzzyThreshold
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("threshold", strconv.FormatFloat(threshold, 'f', -1, 64))

	var resp []model.SearchResult
	if err := c.do(ctx, http.MethodGet, "/search/fuzzy", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// do performs one round trip and decodes a successful body into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w: %v", common.ErrBackend, common.ErrRateLimited, err)
		}
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", common.ErrBackend, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", common.ErrBackend, method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	slog.Debug("Backend call completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s returned %d: %s",
			common.ErrBackend, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", common.ErrBackend, path, err)
	}
	return nil
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
