package main

import (
	"context"
	"fmt"

	"github.com/oriys/minifaas/internal/output"
	"github.com/spf13/cobra"
)

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <name>",
		Short:   "Remove a function's declaration from the store",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
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

			if _, err := st.Get(ctx, name); err != nil {
				return fmt.Errorf("function %s not found: %w", name, err)
			}
			if err := st.Delete(ctx, name); err != nil {
				return fmt.Errorf("delete function %s: %w", name, err)
			}

			printer := output.NewPrinter(output.FormatTable)
			printer.Success("deleted function %s", name)
			printer.Info("a running daemon keeps its executor up until it restarts")
			return nil
		},
	}

	return cmd
}
