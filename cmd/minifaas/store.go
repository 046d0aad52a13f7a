package main

import (
	"context"
	"fmt"

	"github.com/oriys/minifaas/internal/config"
	"github.com/oriys/minifaas/internal/store"
)

// openStore builds the FunctionStore named by cfg.Store.Backend. Every CLI
// command that touches declarations (register, list, get, delete, invoke,
// logs) opens and closes its own store handle rather than sharing one
// across the process's lifetime.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "json":
		return store.NewJSONStore(cfg.Store.JSONPath)
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Store.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
