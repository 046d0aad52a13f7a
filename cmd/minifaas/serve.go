package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/oriys/minifaas/internal/config"
	"github.com/oriys/minifaas/internal/controller"
	"github.com/oriys/minifaas/internal/facade"
	"github.com/oriys/minifaas/internal/httpapi"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/logging"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/metrics"
	"github.com/oriys/minifaas/internal/observability"
	"github.com/oriys/minifaas/internal/timertrigger"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		httpAddr  string
		envRoot   string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the minifaas daemon: HTTP front-end, trigger routers, and the function registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("http") {
				cfg.Daemon.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("env-root") {
				cfg.Toolchain.InstallDir = envRoot
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Daemon.LogLevel = logLevel
			}

			logging.SetLevelFromString(cfg.Daemon.LogLevel)
			logging.InitStructured(logFormat, cfg.Daemon.LogLevel, cfg.Tracing.ServiceName)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := observability.Init(ctx, observability.Config{
				Enabled:     cfg.Tracing.Enabled,
				Exporter:    cfg.Tracing.Exporter,
				Endpoint:    cfg.Tracing.Endpoint,
				ServiceName: cfg.Tracing.ServiceName,
				SampleRate:  cfg.Tracing.SampleRate,
			}); err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			defer observability.Shutdown(context.Background())

			if cfg.Metrics.Enabled {
				metrics.Init(cfg.Metrics.Namespace, cfg.Metrics.HistogramBuckets)
			}

			st, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open function store: %w", err)
			}
			defer st.Close()

			toolchains, err := buildToolchains(ctx, cfg)
			if err != nil {
				return fmt.Errorf("build toolchains: %w", err)
			}

			router := httptrigger.NewRouter()
			scheduler := timertrigger.NewScheduler(cfg.Scheduler.TickInterval)
			go scheduler.Run(ctx)
			defer scheduler.Stop()

			collector := logs.NewCollector()
			liveTail := buildLiveTail(cfg)

			ctrl := controller.New(cfg.Toolchain.InstallDir, toolchains, router, scheduler, collector, liveTail, cfg.Executor.DefaultTimeout)

			records, err := st.List(ctx)
			if err != nil {
				return fmt.Errorf("list persisted functions: %w", err)
			}
			if err := ctrl.Reconcile(ctx, records); err != nil {
				return fmt.Errorf("reconcile control plane: %w", err)
			}
			logging.Op().Info("reconciled functions from store", "count", len(records))

			f := facade.New(ctrl, st, router)
			server := httpapi.New(f)

			httpServer := &http.Server{Addr: cfg.Daemon.HTTPAddr, Handler: server}
			go func() {
				logging.Op().Info("http api listening", "addr", cfg.Daemon.HTTPAddr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logging.Op().Error("http server exited", "error", err)
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			ticker := time.NewTicker(10 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-sigCh:
					logging.Op().Info("shutdown signal received")
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					_ = httpServer.Shutdown(shutdownCtx)
					shutdownCancel()
					_ = f.Shutdown()
					return nil
				case <-ticker.C:
					logging.Op().Debug("daemon status", "active_functions", len(records))
				}
			}
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP API address (e.g. :8080)")
	cmd.Flags().StringVar(&envRoot, "env-root", "", "root directory for per-environment toolchain installs")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	return cmd
}

func buildLiveTail(cfg *config.Config) logs.LiveTail {
	if !cfg.LiveTail.Enabled {
		return logs.NopLiveTail{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.LiveTail.RedisAddr})
	return logs.NewRedisLiveTail(client)
}
