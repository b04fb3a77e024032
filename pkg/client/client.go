// Package client provides the character API HTTP client with rate limiting,
// response caching, retries and error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/model"
	"github.com/Sternrassler/character-browser/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public character API.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "characters_requests_total",
		Help: "Total character API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "characters_request_duration_seconds",
		Help:    "Character API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "characters_errors_total",
		Help: "Total character API errors by class",
	}, []string{"class"})
)

// Client talks to the character API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, e.g. "https://rickandmortyapi.com/api".
	BaseURL string

	// Redis enables the response cache and shared rate limit state.
	// Optional.
	Redis *redis.Client

	// Cache overrides the response cache. Without it the cache is built on
	// Redis when set and disabled otherwise.
	Cache *cache.Manager

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry overrides the per-class retry policy when MaxAttempts > 0.
	Retry RetryConfig

	// IDsPerRequest bounds the id list of one multi-character request.
	IDsPerRequest int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redisClient *redis.Client, userAgent string) Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Redis:         redisClient,
		UserAgent:     userAgent,
		Timeout:       30 * time.Second,
		IDsPerRequest: 20,
	}
}

// New creates a new character API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}

	if cfg.Retry.MaxAttempts < 0 {
		return nil, fmt.Errorf("retry max attempts must be >= 0 (got %d)", cfg.Retry.MaxAttempts)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.IDsPerRequest <= 0 {
		cfg.IDsPerRequest = 20
	}

	logger := log.With().Str("component", "character-client").Logger()

	cacheManager := cfg.Cache
	if cacheManager == nil && cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: ratelimit.NewTracker(cfg.Redis, logger),
		cache:       cacheManager,
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request through the response cache, the rate limiter
// and the retry policy. A fresh cached response is returned without a
// request; a stale one turns the request conditional and is served again
// on 304. 4xx answers are returned as responses for the caller to inspect;
// retryable failures that never succeed come back as errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.KeyFromURL(req.URL)
	var stored *cache.Entry
	if c.cache != nil {
		entry, fresh, err := c.cache.Lookup(ctx, cacheKey)
		switch {
		case errors.Is(err, cache.ErrCacheMiss):
		case err != nil:
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache lookup error")
		case fresh:
			requestsTotal.WithLabelValues(endpoint, "cache").Inc()
			c.logger.Debug().Str("endpoint", endpoint).Msg("Serving fresh cached response")
			return entry.Response(cache.SourceFresh), nil
		default:
			stored = entry
		}
	}

	allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Rate limit check failed")
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Msg("Request blocked by rate limiter")
		requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
		return nil, ErrRateLimited
	}

	if stored.Conditional(req) {
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", stored.ETag).
			Msg("Revalidating stale cached response")
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", req.URL.String()).
		Msg("Executing character API request")

	var resp *http.Response

	retryErr := retryWithBackoff(ctx, func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			resp = nil
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: reqErr}
		}

		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}

		if resp.StatusCode == http.StatusNotModified {
			return nil
		}

		if errClass := classifyStatus(resp.StatusCode); errClass != "" {
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Character API request error")

			if shouldRetry(errClass) {
				apiErr := &APIError{
					StatusCode: resp.StatusCode,
					ErrorClass: errClass,
					Message:    resp.Status,
				}
				resp.Body.Close()
				resp = nil
				return apiErr
			}

			// Client errors are handed to the caller as-is.
			return nil
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	}, classifyError, c.retryConfig)

	if retryErr != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, retryErr
	}

	if resp.StatusCode == http.StatusNotModified {
		requestsTotal.WithLabelValues(endpoint, "304").Inc()
		resp.Body.Close()

		if stored == nil {
			return nil, &APIError{
				StatusCode: http.StatusNotModified,
				ErrorClass: ErrorClassServer,
				Message:    "304 without cached entry",
			}
		}

		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified, serving cached response")
		if err := c.cache.Revalidated(ctx, cacheKey, stored, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cached response")
		}
		return stored.Response(cache.SourceRevalidated), nil
	}

	if resp.StatusCode == http.StatusOK && c.cache != nil {
		if err := c.cache.StoreResponse(ctx, cacheKey, resp); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		}
	}

	return resp, nil
}

// retryConfig applies the configured override, if any.
func (c *Client) retryConfig(class ErrorClass) RetryConfig {
	if c.config.Retry.MaxAttempts > 0 {
		return c.config.Retry
	}
	return RetryConfigForErrorClass(class)
}

// classifyError extracts the class of a failure produced inside Do.
func classifyError(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// Get performs a GET request to an API path relative to the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// FetchPage retrieves one page of characters.
func (c *Client) FetchPage(ctx context.Context, pageNum int) (*model.Page, error) {
	if pageNum < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidPage, pageNum)
	}

	resp, err := c.Get(ctx, "/character/?page="+strconv.Itoa(pageNum))
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", pageNum, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", pageNum, err)
	}

	var decoded model.PageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("fetch page %d: %w: %v", pageNum, ErrDecode, err)
	}

	page := model.NewPage(pageNum, decoded)
	c.logger.Debug().
		Int("page", pageNum).
		Int("items", len(page.Items)).
		Int("total_count", page.TotalCount).
		Msg("Fetched character page")

	return page, nil
}

// FetchCharacters resolves characters by id. Ids are deduplicated, sent in
// chunks of IDsPerRequest, and returned in the order first requested. Ids the
// API does not know are left out.
func (c *Client) FetchCharacters(ctx context.Context, ids []int) ([]model.Character, error) {
	wanted := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id < 1 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		wanted = append(wanted, id)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	found := make(map[int]model.Character, len(wanted))
	for start := 0; start < len(wanted); start += c.config.IDsPerRequest {
		end := min(start+c.config.IDsPerRequest, len(wanted))
		chars, err := c.fetchChunk(ctx, wanted[start:end])
		if err != nil {
			return nil, err
		}
		for _, ch := range chars {
			found[ch.ID] = ch
		}
	}

	out := make([]model.Character, 0, len(found))
	for _, id := range wanted {
		if ch, ok := found[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (c *Client) fetchChunk(ctx context.Context, ids []int) ([]model.Character, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	list := strings.Join(parts, ",")

	resp, err := c.Get(ctx, "/character/"+list)
	if err != nil {
		return nil, fmt.Errorf("fetch characters %s: %w", list, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch characters %s: %w", list, err)
	}

	chars, err := decodeCharacters(body)
	if err != nil {
		return nil, fmt.Errorf("fetch characters %s: %w", list, err)
	}
	return chars, nil
}

// decodeCharacters accepts the single-object form the API uses for one id
// and the array form it uses for several.
func decodeCharacters(body []byte) ([]model.Character, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrDecode)
	}

	if trimmed[0] == '{' {
		var one model.Character
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return []model.Character{one}, nil
	}

	var many []model.Character
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return many, nil
}

// readBody returns the body of a 2xx response, or an APIError carrying the
// API's error message.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		var apiMsg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiMsg) == nil && apiMsg.Error != "" {
			msg = apiMsg.Error
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    msg,
		}
	}

	return body, nil
}

// endpointLabel collapses id lists so metric labels stay bounded.
func endpointLabel(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return path
	}
	last := trimmed[idx+1:]
	if last != "" && strings.IndexFunc(last, func(r rune) bool { return (r < '0' || r > '9') && r != ',' }) == -1 {
		return trimmed[:idx+1] + "{ids}"
	}
	return path
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// RateLimiter returns the rate limit tracker.
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}

// GetCache returns the response cache, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
