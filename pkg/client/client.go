// Package client provides the session layer for the NEIS open-data hub:
// page requests, response envelopes, and the failure taxonomy.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/neis-client/pkg/cache"
	"github.com/Sternrassler/neis-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for hub requests.
var (
	neisRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neis_requests_total",
		Help: "Total NEIS page requests by service and status",
	}, []string{"service", "status"})

	neisRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neis_request_duration_seconds",
		Help:    "NEIS page request duration in seconds by service",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	}, []string{"service"})

	neisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neis_errors_total",
		Help: "Total NEIS errors by class",
	}, []string{"class"})
)

// Config holds the session configuration.
type Config struct {
	// APIKey is the hub credential (REQUIRED). It is sent as the KEY
	// parameter and never logged.
	APIKey string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// MaxPageSize caps pSize. Zero derives it from the key tier.
	MaxPageSize int

	// Timeout bounds each page request. Zero disables the bound.
	Timeout time.Duration

	// Retry applies to transport failures only.
	Retry RetryConfig

	// Cache stores page bodies. Nil disables caching.
	Cache    cache.Store
	CacheTTL time.Duration

	// Quota gates requests after the daily traffic limit trips. Nil disables it.
	Quota *ratelimit.Tracker

	// HTTPClient overrides the transport (e.g. for tests).
	HTTPClient *http.Client

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		Timeout:  15 * time.Second,
		Retry:    DefaultRetryConfig(),
		CacheTTL: cache.DefaultTTL,
	}
}

// Session is an open handle on the hub. It is safe for concurrent use.
//
// Close cancels requests that are still in flight; they fail with
// ErrSessionClosed.
type Session struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	maxPageSize int
	timeout     time.Duration
	retry       RetryConfig
	cache       cache.Store
	cacheTTL    time.Duration
	quota       *ratelimit.Tracker
	logger      zerolog.Logger

	base   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// New validates cfg and opens a session.
func New(cfg Config) (*Session, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	if cfg.MaxPageSize < 0 {
		return nil, fmt.Errorf("max_page_size must be >= 0 (got %d)", cfg.MaxPageSize)
	}
	maxPageSize := cfg.MaxPageSize
	if maxPageSize == 0 {
		maxPageSize = DerivePageSize(cfg.APIKey)
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}

	logger := log.With().Str("component", "neis-session").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}

	base, cancel := context.WithCancel(context.Background())

	return &Session{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		maxPageSize: maxPageSize,
		timeout:     cfg.Timeout,
		retry:       retry,
		cache:       cfg.Cache,
		cacheTTL:    cacheTTL,
		quota:       cfg.Quota,
		logger:      logger,
		base:        base,
		cancel:      cancel,
	}, nil
}

// WithSession opens a session, runs fn, and closes the session on every
// exit path, including panics.
func WithSession(cfg Config, fn func(*Session) error) (err error) {
	s, err := New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// MaxPageSize returns the pSize ceiling of this session.
func (s *Session) MaxPageSize() int {
	return s.maxPageSize
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close releases the session. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.httpClient.CloseIdleConnections()

	s.logger.Debug().Msg("Session closed")
	return nil
}

// requestContext derives a context that is also cancelled, with cause
// ErrSessionClosed, when the session closes. It fails if the session is
// already closed.
func (s *Session) requestContext(parent context.Context) (context.Context, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, nil, ErrSessionClosed
	}

	ctx, cancel := context.WithCancelCause(parent)
	stop := context.AfterFunc(s.base, func() {
		cancel(ErrSessionClosed)
	})

	return ctx, func() {
		stop()
		cancel(nil)
	}, nil
}

// Get performs one page request and returns the raw 200 body.
//
// Transport failures and non-200 statuses return *ServiceUnavailableError.
// The body itself is not interpreted beyond cache and quota bookkeeping; use
// Decode for that. Sizes above MaxPageSize are clamped.
func (s *Session) Get(ctx context.Context, req PageRequest) ([]byte, error) {
	service := req.Service.String()

	ctx, release, err := s.requestContext(ctx)
	if err != nil {
		neisRequestsTotal.WithLabelValues(service, "closed").Inc()
		return nil, err
	}
	defer release()

	if req.Service == "" {
		return nil, errors.New("service is required")
	}
	if req.Index < 1 {
		return nil, fmt.Errorf("page index must be >= 1 (got %d)", req.Index)
	}
	if req.Size < 1 {
		return nil, fmt.Errorf("page size must be >= 1 (got %d)", req.Size)
	}
	if req.Size > s.maxPageSize {
		req.Size = s.maxPageSize
	}

	// Step 1: Check Quota
	if s.quota != nil {
		allowed, state, err := s.quota.ShouldAllowRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("quota check: %w", err)
		}
		if !allowed {
			neisRequestsTotal.WithLabelValues(service, "quota_blocked").Inc()
			neisErrorsTotal.WithLabelValues(string(ErrorClassQuota)).Inc()
			code := state.Code
			if code == "" {
				code = CodeTrafficLimit
			}
			return nil, &InternalServiceError{
				Code:    code,
				Message: fmt.Sprintf("daily traffic limit exhausted until %s", state.ResetAt.Format(time.RFC3339)),
				ResetAt: state.ResetAt,
			}
		}
	}

	filters := req.Params.Filters()

	// Step 2: Check Cache
	cacheKey := cache.CacheKey{
		Service:   service,
		Params:    filters,
		PageIndex: req.Index,
		PageSize:  req.Size,
	}
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			neisRequestsTotal.WithLabelValues(service, "cache_hit").Inc()
			s.logger.Debug().
				Str("service", service).
				Int("page", req.Index).
				Int("page_size", req.Size).
				Msg("Serving page from cache")
			return append([]byte(nil), entry.Data...), nil
		case !errors.Is(err, cache.ErrCacheMiss):
			s.logger.Warn().Err(err).Str("service", service).Msg("Cache get error")
		}
	}

	// Step 3: Execute HTTP Request
	endpoint := s.baseURL + service
	query := url.Values{}
	for k, v := range filters {
		query.Set(k, v)
	}
	query.Set("KEY", s.apiKey)
	query.Set("Type", "json")
	query.Set("pIndex", strconv.Itoa(req.Index))
	query.Set("pSize", strconv.Itoa(req.Size))

	s.logger.Debug().
		Str("service", service).
		Int("page", req.Index).
		Int("page_size", req.Size).
		Msg("Executing NEIS request")

	start := time.Now()
	var body []byte
	err = retryWithBackoff(ctx, s.retry, s.logger, func() error {
		var doErr error
		body, doErr = s.do(ctx, service, endpoint, query)
		return doErr
	})
	neisRequestDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(context.Cause(ctx), ErrSessionClosed) {
			neisRequestsTotal.WithLabelValues(service, "closed").Inc()
			return nil, ErrSessionClosed
		}
		neisErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		s.logger.Warn().
			Err(err).
			Str("service", service).
			Int("page", req.Index).
			Str("error_class", string(ErrorClassTransport)).
			Msg("NEIS request failed")
		return nil, err
	}

	// Step 4: Quota and cache bookkeeping
	success, code := peek(req.Service, body)
	if code == CodeTrafficLimit && s.quota != nil {
		if err := s.quota.MarkExhausted(ctx, code); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record quota exhaustion")
		}
	}

	if s.cache != nil && (success || code == CodeNoData) {
		if err := s.cache.Set(ctx, cacheKey, cache.NewEntry(body, s.cacheTTL)); err != nil {
			s.logger.Warn().Err(err).Str("service", service).Msg("Failed to cache page")
		}
	}

	return body, nil
}

// do issues a single HTTP attempt. Errors never carry the query string so
// the key cannot leak through them.
func (s *Session) do(ctx context.Context, service, endpoint string, query url.Values) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		neisRequestsTotal.WithLabelValues(service, "network_error").Inc()
		return nil, &ServiceUnavailableError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	neisRequestsTotal.WithLabelValues(service, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &ServiceUnavailableError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceUnavailableError{URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
