package main

import (
	"context"
	"fmt"

	"github.com/oriys/minifaas/internal/environment"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/spf13/cobra"
)

func logsCmd() *cobra.Command {
	var (
		start int
		count int
	)

	cmd := &cobra.Command{
		Use:   "logs <name>",
		Short: "Print the stdout log captured for a function's environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Get(ctx, name)
			if err != nil {
				return fmt.Errorf("load function %s: %w", name, err)
			}

			registry := environment.NewRegistry(cfg.Toolchain.InstallDir)
			env, err := registry.GetOrCreate(rec.EnvironmentID)
			if err != nil {
				return fmt.Errorf("open environment for %s: %w", name, err)
			}

			out, err := logs.NewCollector().Lines(env, start, count)
			if err != nil {
				return fmt.Errorf("read logs for %s: %w", name, err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "first line to print")
	cmd.Flags().IntVar(&count, "lines", 100, "number of lines to print")
	return cmd
}
