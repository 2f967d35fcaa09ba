package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/server"
	"github.com/desertthunder/ankix/internal/shared"
)

// Serve runs the development backend until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "component", "server")
	backend := server.New(server.Options{
		Logger: logger,
		Step:   cmd.Float("step"),
	})

	if dir := cmd.String("seed"); dir != "" {
		n, err := backend.SeedDir(dir)
		if err != nil {
			return err
		}
		logger.Info("seeded decks", "dir", dir, "count", n)
	}

	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(cmd.Int("port")))
	return server.Serve(ctx, addr, backend.Handler(), logger)
}

// Health checks the backend's health endpoint.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	baseURL := r.config.API.BaseURL
	if err := r.client.Health(ctx); err != nil {
		return fmt.Errorf("backend at %s is unavailable: %w", baseURL, err)
	}
	return r.writePlain("✓ Backend at %s is healthy\n", baseURL)
}
