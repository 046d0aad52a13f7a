package main

import (
	"context"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/output"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List all registered functions",
		Aliases: []string{"ls"},
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

			recs, err := st.List(ctx)
			if err != nil {
				return err
			}

			rows := make([]output.FunctionRow, 0, len(recs))
			for _, rec := range recs {
				rows = append(rows, output.FunctionRow{
					Name:          rec.Name(),
					Language:      string(rec.Language()),
					TriggerKind:   string(rec.TriggerOf().Kind),
					Binding:       bindingOf(rec.TriggerOf()),
					EnvironmentID: rec.EnvironmentID.String(),
					Created:       rec.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}

			printer := output.NewPrinter(output.ParseFormat(outputFormat))
			return printer.PrintFunctions(rows)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, wide, json, yaml)")
	return cmd
}

func bindingOf(t domain.Trigger) string {
	switch t.Kind {
	case domain.TriggerHTTP:
		return string(t.Method)
	case domain.TriggerInterval:
		return t.Cron
	default:
		return ""
	}
}
