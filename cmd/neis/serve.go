package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/neis-client/internal/server"
	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/school"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve hub rows over HTTP",
		Long: `Serve exposes /health, /ready, /metrics and GET /v1/{service}.
Query parameters other than hint are forwarded to the hub as filters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (server.addr)")
	return cmd
}

// serve runs the gateway until ctx is cancelled, then drains in-flight
// requests before closing the session.
func (a *app) serve(ctx context.Context) error {
	b, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	session, err := client.New(a.sessionConfig(b))
	if err != nil {
		return err
	}
	defer session.Close()

	srv := a.newServer(session, b)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *app) newServer(session *client.Session, b *backend) *server.Server {
	srv := server.New(server.Config{
		Addr:         a.cfg.Server.Addr,
		FetchTimeout: a.cfg.Server.FetchTimeout,
	}, school.New(session, a.cfg.fetchConfig()))

	srv.RegisterChecker("session", server.CheckFunc(func(context.Context) error {
		if session.Closed() {
			return client.ErrSessionClosed
		}
		return nil
	}))

	if b.redis != nil {
		srv.RegisterChecker("redis", server.CheckFunc(func(ctx context.Context) error {
			return b.redis.Ping(ctx).Err()
		}))
	}

	if b.tracker != nil {
		srv.RegisterChecker("quota", server.CheckFunc(func(ctx context.Context) error {
			state, err := b.tracker.GetState(ctx)
			if err != nil {
				return err
			}
			if state.NeedsBlock(time.Now()) {
				return errors.New("daily quota exhausted until " + state.ResetAt.Format(time.RFC3339))
			}
			return nil
		}))
	}

	return srv
}
