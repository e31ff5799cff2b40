package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/neis-client/pkg/cache"
	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/logging"
	"github.com/Sternrassler/neis-client/pkg/ratelimit"
	"github.com/Sternrassler/neis-client/pkg/school"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        *Config
	out        io.Writer
	logger     zerolog.Logger
}

// initialize loads the configuration and sets up logging.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configPath, cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	a.logger = logging.NewLogger("neis-cli")

	return nil
}

// backend holds the session dependencies that own external resources.
type backend struct {
	redis   *redis.Client
	store   cache.Store
	tracker *ratelimit.Tracker
}

func (b *backend) Close() error {
	if b.redis != nil {
		return b.redis.Close()
	}
	return nil
}

// openBackend connects Redis when configured and builds the cache store
// and quota tracker.
func (a *app) openBackend(ctx context.Context) (*backend, error) {
	b := &backend{}

	if a.cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.redis.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
		}
		a.logger.Debug().Str("addr", a.cfg.Redis.Addr).Msg("Connected to Redis")
	}

	switch a.cfg.Cache.Backend {
	case "memory":
		b.store = cache.NewMemoryStore(a.cfg.Cache.Size)
	case "redis":
		b.store = cache.NewManager(b.redis)
	}

	if a.cfg.Quota.Enabled {
		b.tracker = ratelimit.NewTracker(b.redis, logging.NewLogger("neis-quota"))
	}

	return b, nil
}

func (a *app) sessionConfig(b *backend) client.Config {
	cfg := a.cfg.clientConfig()
	cfg.Cache = b.store
	cfg.Quota = b.tracker
	logger := logging.NewLogger("neis-session")
	cfg.Logger = &logger
	return cfg
}

// withSchool runs fn with a facade over a fresh session and releases every
// resource afterwards.
func (a *app) withSchool(ctx context.Context, fn func(*school.Client) error) error {
	b, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	return client.WithSession(a.sessionConfig(b), func(s *client.Session) error {
		return fn(school.New(s, a.cfg.fetchConfig()))
	})
}
