package main

import (
	"context"
	"fmt"

	"github.com/oriys/minifaas/internal/config"
	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/toolchain"
)

// buildToolchains wires the two languages the daemon knows how to run:
// javascript via a downloaded Deno release, and shell via whatever "sh" is
// already on PATH.
func buildToolchains(ctx context.Context, cfg *config.Config) (*toolchain.Map, error) {
	archiveSource, err := buildArchiveSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build archive source: %w", err)
	}

	m := toolchain.NewMap()
	m.Register(domain.LanguageJavaScript, toolchain.Entry{
		Setup: &toolchain.JSSetup{
			Version: cfg.Toolchain.DenoVersion,
			Source:  archiveSource,
		},
		Lifecycle: &toolchain.JSLifecycle{},
	})
	m.Register(domain.LanguageShell, toolchain.Entry{
		Setup:     &toolchain.ShellSetup{},
		Lifecycle: &toolchain.ShellLifecycle{},
	})
	return m, nil
}

func buildArchiveSource(ctx context.Context, cfg *config.Config) (toolchain.ArchiveSource, error) {
	switch cfg.Toolchain.ArchiveSource {
	case "", "http":
		return toolchain.NewHTTPArchiveSource("https://github.com/denoland/deno/releases/download"), nil
	case "s3":
		return toolchain.NewS3ArchiveSource(ctx, cfg.Toolchain.S3Bucket, cfg.Toolchain.S3Prefix)
	default:
		return nil, fmt.Errorf("unknown toolchain archive source %q", cfg.Toolchain.ArchiveSource)
	}
}
