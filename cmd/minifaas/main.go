package main

import (
	"fmt"
	"os"

	"github.com/oriys/minifaas/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	storePath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minifaas",
		Short: "minifaas - a single-host function-as-a-service control plane",
		Long:  "A minimal FaaS control plane: register functions, bind them to HTTP routes or cron schedules, and run them through pluggable language toolchains.",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a JSON config file (optional, flags and env vars override it)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "override the function store path/DSN for this invocation")

	rootCmd.AddCommand(
		serveCmd(),
		registerCmd(),
		listCmd(),
		getCmd(),
		deleteCmd(),
		invokeCmd(),
		logsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig assembles configuration the same way serveCmd does: defaults,
// then an optional file overlay, then environment variables, then the
// --store flag for one-off CLI commands that talk to an already-running
// daemon's store without starting the rest of the control plane.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	if storePath != "" {
		if cfg.Store.Backend == "postgres" {
			cfg.Store.PostgresDSN = storePath
		} else {
			cfg.Store.JSONPath = storePath
		}
	}
	return cfg, nil
}
