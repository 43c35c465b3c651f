package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/iamankun/studio-sub000/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the submission HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = int(port)
	}

	router := server.NewBasicRouter()
	router.Use(
		server.Logging(r.logger),
		server.RateLimit(cfg.RateLimit, cfg.RateBurst),
		server.Identity(env.users),
	)
	router.Handler(server.NewSubmissionHandler(env.service))

	srv := server.New(cfg, router)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.logger.Info("serving submission API", "addr", srv.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
