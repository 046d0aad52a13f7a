package main

import (
	"context"
	"testing"

	"github.com/oriys/minifaas/internal/config"
	"github.com/oriys/minifaas/internal/domain"
)

func TestBuildArchiveSourceDefaultsToHTTP(t *testing.T) {
	cfg := config.DefaultConfig()
	src, err := buildArchiveSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildArchiveSource: %v", err)
	}
	if src == nil {
		t.Fatal("expected a non-nil archive source")
	}
}

func TestBuildArchiveSourceRejectsUnknown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Toolchain.ArchiveSource = "ftp"
	if _, err := buildArchiveSource(context.Background(), cfg); err == nil {
		t.Fatal("expected an error for an unknown archive source")
	}
}

func TestBuildToolchainsRegistersJavaScriptAndShell(t *testing.T) {
	cfg := config.DefaultConfig()
	m, err := buildToolchains(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildToolchains: %v", err)
	}

	if _, ok := m.Select(domain.LanguageJavaScript); !ok {
		t.Error("expected a javascript toolchain entry")
	}
	if _, ok := m.Select(domain.LanguageShell); !ok {
		t.Error("expected a shell toolchain entry")
	}
	if _, ok := m.Select(domain.LanguageUnknown); ok {
		t.Error("expected no entry for an unregistered language")
	}
}
