package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jsnanigans/rowcast/internal/api"
	"github.com/jsnanigans/rowcast/internal/config"
	"github.com/jsnanigans/rowcast/internal/logging"
)

// newServer loads the configuration named by ROWCAST_CONFIG and builds the API server.
func newServer() (*api.Server, *zap.Logger, error) {
	cfg, err := config.Load(os.Getenv("ROWCAST_CONFIG"))
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(cfg.Logging, false)
	if err != nil {
		return nil, nil, err
	}
	return api.NewServer(cfg, logger), logger, nil
}

// run serves until ctx is cancelled and returns the process exit code. The logger is
// synced on every path.
func run(ctx context.Context) int {
	srv, logger, err := newServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rowcast: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}
