package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for fetch operations.
var (
	neisFetchPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neis_fetch_pages_total",
		Help: "Total pages requested by the fetch executor by service",
	}, []string{"service"})

	neisFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neis_fetch_duration_seconds",
		Help:    "Duration of complete fetches by service and mode",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"service", "mode"})

	neisFetchResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neis_fetch_results_total",
		Help: "Total fetches by service and outcome (ok, not_found, error)",
	}, []string{"service", "outcome"})

	neisFetchIncompleteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neis_fetch_incomplete_total",
		Help: "Fetches that returned fewer rows than the declared total",
	}, []string{"service"})
)

// Mode selects how pages after the probe page are issued.
type Mode string

const (
	// ModeSequential issues pages one after another.
	ModeSequential Mode = "sequential"

	// ModeConcurrent issues pages in parallel, bounded by MaxConcurrency.
	ModeConcurrent Mode = "concurrent"
)

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeConcurrent:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown fetch mode %q (want %q or %q)", s, ModeSequential, ModeConcurrent)
	}
}

// Config holds executor configuration.
type Config struct {
	Mode Mode

	// MaxConcurrency is the maximum number of parallel page requests.
	MaxConcurrency int

	// Timeout per page request. Zero leaves it to the session.
	Timeout time.Duration
}

// DefaultConfig returns safe default configuration.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeConcurrent,
		MaxConcurrency: 8,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher is the session contract the executor depends on.
// *client.Session implements it.
type PageFetcher interface {
	Get(ctx context.Context, req client.PageRequest) ([]byte, error)
	Closed() bool
	MaxPageSize() int
}

var _ PageFetcher = (*client.Session)(nil)

// Query is one logical fetch.
type Query struct {
	Service client.Service
	Params  client.Params

	// Hint is the expected row count; zero means unknown.
	Hint int
}

// Executor fetches every page of a query and reassembles the rows.
type Executor struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewExecutor creates a new executor.
func NewExecutor(fetcher PageFetcher, config Config) *Executor {
	if config.Mode == "" {
		config.Mode = ModeConcurrent
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}

	return &Executor{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "neis-fetch").Logger(),
	}
}

// WithLogger returns a copy of the executor that logs to logger.
func (e *Executor) WithLogger(logger zerolog.Logger) *Executor {
	clone := *e
	clone.logger = logger
	return &clone
}

// Fetch returns all rows of q in page order.
//
// It fails with client.ErrSessionClosed without any request when the
// session is closed, with client.ErrNotFound when nothing matched, and with
// the first fatal page error otherwise.
func (e *Executor) Fetch(ctx context.Context, q Query) ([]client.Row, error) {
	service := q.Service.String()
	start := time.Now()

	rows, err := e.fetch(ctx, q)

	neisFetchDuration.WithLabelValues(service, string(e.config.Mode)).Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		neisFetchResultsTotal.WithLabelValues(service, "ok").Inc()
		e.logger.Info().
			Str("service", service).
			Int("rows", len(rows)).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete")
	case errors.Is(err, client.ErrNotFound):
		neisFetchResultsTotal.WithLabelValues(service, "not_found").Inc()
		e.logger.Debug().Str("service", service).Msg("Fetch matched no rows")
	default:
		neisFetchResultsTotal.WithLabelValues(service, "error").Inc()
		e.logger.Error().
			Err(err).
			Str("service", service).
			Str("error_class", string(client.Classify(err))).
			Msg("Fetch failed")
	}

	return rows, err
}

func (e *Executor) fetch(ctx context.Context, q Query) ([]client.Row, error) {
	if e.fetcher.Closed() {
		return nil, client.ErrSessionClosed
	}
	if q.Hint < 0 {
		return nil, fmt.Errorf("hint must be >= 0 (got %d)", q.Hint)
	}

	// Page requests share this copy; the caller's map stays theirs.
	q.Params = q.Params.Clone()

	plan := NewPlan(q.Hint, e.fetcher.MaxPageSize())
	size := plan.FirstRequestSize()

	// Probe page: NotFound here ends the fetch.
	first, err := e.fetchPage(ctx, q, 1, size)
	if err != nil {
		return nil, err
	}

	if first.HasTotal && first.Total == 0 {
		return nil, client.ErrNotFound
	}

	remaining := plan.RemainingPages(first.Total, first.HasTotal)

	e.logger.Debug().
		Str("service", q.Service.String()).
		Int("total", first.Total).
		Int("page_size", size).
		Int("remaining_pages", remaining).
		Str("mode", string(e.config.Mode)).
		Msg("Planned fetch")

	pages := make([][]client.Row, remaining+1)
	pages[0] = first.Rows

	if remaining > 0 {
		if e.config.Mode == ModeSequential {
			err = e.fetchSequential(ctx, q, size, pages)
		} else {
			err = e.fetchConcurrent(ctx, q, size, pages)
		}
		if err != nil {
			return nil, err
		}
	}

	var rows []client.Row
	for _, page := range pages {
		rows = append(rows, page...)
	}

	if len(rows) == 0 {
		return nil, client.ErrNotFound
	}

	if first.HasTotal {
		expected := first.Total
		if plan.HasHint() {
			expected = min(expected, plan.Hint)
		}
		if len(rows) < expected {
			neisFetchIncompleteTotal.WithLabelValues(q.Service.String()).Inc()
			e.logger.Warn().
				Str("service", q.Service.String()).
				Int("total", first.Total).
				Int("rows", len(rows)).
				Msg("Fetched fewer rows than declared")
		}
	}

	if plan.HasHint() && len(rows) > plan.Hint {
		rows = rows[:plan.Hint]
	}

	return rows, nil
}

// fetchSequential fills pages[1:] in order and stops at the first fatal error.
func (e *Executor) fetchSequential(ctx context.Context, q Query, size int, pages [][]client.Row) error {
	for i := 1; i < len(pages); i++ {
		rows, err := e.fetchTrailingPage(ctx, q, i+1, size)
		if err != nil {
			return err
		}
		pages[i] = rows
	}
	return nil
}

// fetchConcurrent fills pages[1:] through a bounded errgroup. The first fatal
// error cancels the siblings and is the one returned.
func (e *Executor) fetchConcurrent(ctx context.Context, q Query, size int, pages [][]client.Row) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxConcurrency)

	for i := 1; i < len(pages); i++ {
		g.Go(func() error {
			rows, err := e.fetchTrailingPage(gctx, q, i+1, size)
			if err != nil {
				return err
			}
			// Each goroutine owns exactly one slot.
			pages[i] = rows
			return nil
		})
	}

	return g.Wait()
}

// fetchTrailingPage fetches a page after the probe. NotFound counts as an
// empty page.
func (e *Executor) fetchTrailingPage(ctx context.Context, q Query, index, size int) ([]client.Row, error) {
	page, err := e.fetchPage(ctx, q, index, size)
	if errors.Is(err, client.ErrNotFound) {
		e.logger.Warn().
			Str("service", q.Service.String()).
			Int("page", index).
			Msg("Trailing page reported no data")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return page.Rows, nil
}

func (e *Executor) fetchPage(ctx context.Context, q Query, index, size int) (*client.Page, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	neisFetchPagesTotal.WithLabelValues(q.Service.String()).Inc()

	body, err := e.fetcher.Get(ctx, client.PageRequest{
		Service: q.Service,
		Params:  q.Params,
		Index:   index,
		Size:    size,
	})
	if err != nil {
		return nil, err
	}
	return client.Decode(q.Service, body)
}
