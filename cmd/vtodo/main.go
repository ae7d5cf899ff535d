// Package main is the entry point for the vtodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"vtodo/internal/cli"
	"vtodo/internal/commands"
	"vtodo/internal/config"
	"vtodo/internal/metrics"
	"vtodo/internal/persist"
	"vtodo/internal/service"
	"vtodo/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openStore)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// openStore opens the configured storage backend and seeds a store from it.
func openStore(ctx context.Context, cfg *config.Config) (service.Service, error) {
	kv, err := persist.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, err
	}
	return store.New(ctx, persist.NewAdapter(kv),
		store.WithLogger(cfg.Logger()),
		store.WithMetrics(metrics.New()),
	), nil
}
