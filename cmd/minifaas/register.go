package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/output"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var (
		language string
		codePath string
		trigger  string
		method   string
		cron     string
	)

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Save a function declaration to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			lang := domain.Language(language)
			if !lang.IsValid() {
				return fmt.Errorf("invalid language: %s (valid: javascript, shell)", language)
			}

			code, err := os.ReadFile(codePath)
			if err != nil {
				return fmt.Errorf("read code file %s: %w", codePath, err)
			}

			var trig domain.Trigger
			switch trigger {
			case "none", "":
				trig = domain.NoneTrigger()
			case "http":
				trig = domain.HTTPTrigger(domain.HTTPMethod(method))
			case "interval":
				if cron == "" {
					return fmt.Errorf("interval trigger requires --cron")
				}
				trig = domain.IntervalTrigger(cron)
			default:
				return fmt.Errorf("unknown trigger kind %q (valid: none, http, interval)", trigger)
			}

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

			rec, err := st.Set(ctx, domain.FunctionDeclaration{
				Name:     name,
				Language: lang,
				Code:     string(code),
				Trigger:  trig,
			})
			if err != nil {
				return fmt.Errorf("save function %s: %w", name, err)
			}

			printer := output.NewPrinter(output.FormatTable)
			printer.Success("registered function %s (environment %s)", rec.Name(), rec.EnvironmentID)
			printer.Info("a running daemon loads declarations only at startup; restart it or call POST /f/%s to start the executor", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "function language (javascript, shell)")
	cmd.Flags().StringVarP(&codePath, "code", "c", "", "path to the function's source file")
	cmd.Flags().StringVar(&trigger, "trigger", "none", "trigger kind (none, http, interval)")
	cmd.Flags().StringVar(&method, "method", string(domain.MethodAll), "HTTP method to bind, for --trigger http")
	cmd.Flags().StringVar(&cron, "cron", "", "cron expression, for --trigger interval")

	cmd.MarkFlagRequired("language")
	cmd.MarkFlagRequired("code")

	return cmd
}
