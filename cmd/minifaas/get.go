package main

import (
	"context"

	"github.com/oriys/minifaas/internal/output"
	"github.com/spf13/cobra"
)

func getCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show one function's declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			rec, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}

			detail := output.FunctionDetail{
				Name:          rec.Name(),
				EnvironmentID: rec.EnvironmentID.String(),
				Language:      string(rec.Language()),
				TriggerKind:   string(rec.TriggerOf().Kind),
				Binding:       bindingOf(rec.TriggerOf()),
				Created:       rec.CreatedAt.Format("2006-01-02 15:04:05"),
				Updated:       rec.UpdatedAt.Format("2006-01-02 15:04:05"),
			}

			printer := output.NewPrinter(output.ParseFormat(outputFormat))
			return printer.PrintFunctionDetail(detail)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}
