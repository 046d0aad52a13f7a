package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oriys/minifaas/internal/domain"
)

func TestBindingOf(t *testing.T) {
	cases := []struct {
		name string
		t    domain.Trigger
		want string
	}{
		{"none", domain.NoneTrigger(), ""},
		{"http", domain.HTTPTrigger(domain.MethodPost), "POST"},
		{"interval", domain.IntervalTrigger("*/5 * * * *"), "*/5 * * * *"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bindingOf(tc.t); got != tc.want {
				t.Errorf("bindingOf(%v) = %q, want %q", tc.t, got, tc.want)
			}
		})
	}
}

func resetGlobalFlags(t *testing.T) {
	t.Helper()
	origConfig, origStore := configFile, storePath
	t.Cleanup(func() {
		configFile, storePath = origConfig, origStore
	})
	configFile, storePath = "", ""
}

func TestLoadConfigDefaultsWhenNoFileOrFlags(t *testing.T) {
	resetGlobalFlags(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.Backend != "json" {
		t.Errorf("Store.Backend = %q, want json", cfg.Store.Backend)
	}
}

func TestLoadConfigStoreFlagOverridesJSONPath(t *testing.T) {
	resetGlobalFlags(t)
	storePath = "/tmp/custom-functions.json"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.JSONPath != storePath {
		t.Errorf("Store.JSONPath = %q, want %q", cfg.Store.JSONPath, storePath)
	}
}

func TestLoadConfigStoreFlagOverridesPostgresDSNWhenBackendIsPostgres(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"store":{"backend":"postgres"}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	configFile = path
	storePath = "postgres://example/db"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.PostgresDSN != storePath {
		t.Errorf("Store.PostgresDSN = %q, want %q", cfg.Store.PostgresDSN, storePath)
	}
}

func TestLoadConfigMissingFileIsError(t *testing.T) {
	resetGlobalFlags(t)
	configFile = filepath.Join(t.TempDir(), "missing.json")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
