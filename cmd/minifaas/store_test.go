package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oriys/minifaas/internal/config"
)

func TestOpenStoreJSONBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Backend = "json"
	cfg.Store.JSONPath = filepath.Join(t.TempDir(), "functions.json")

	st, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.Close()

	if recs, err := st.List(context.Background()); err != nil || len(recs) != 0 {
		t.Errorf("expected an empty freshly-opened store, got %v (err=%v)", recs, err)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Backend = "sqlite"
	if _, err := openStore(context.Background(), cfg); err == nil {
		t.Fatal("expected an error for an unknown store backend")
	}
}
