package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/minifaas/internal/controller"
	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/output"
	"github.com/oriys/minifaas/internal/timertrigger"
	"github.com/spf13/cobra"
)

// invokeCmd spins up a short-lived, single-function control plane: it
// loads the named declaration from the store, brings up its executor, runs
// one invocation, and tears the executor back down. It never touches a
// daemon that might already be running against the same store.
func invokeCmd() *cobra.Command {
	var payload string

	cmd := &cobra.Command{
		Use:   "invoke <name>",
		Short: "Run one function invocation locally and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

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
			if rec.TriggerOf().Kind == domain.TriggerInterval {
				return fmt.Errorf("cannot invoke a timer-triggered function directly; wait for its schedule or change its trigger")
			}

			toolchains, err := buildToolchains(ctx, cfg)
			if err != nil {
				return err
			}

			router := httptrigger.NewRouter()
			scheduler := timertrigger.NewScheduler(time.Second)
			ctrl := controller.New(cfg.Toolchain.InstallDir, toolchains, router, scheduler, logs.NewCollector(), nil, cfg.Executor.DefaultTimeout)

			if err := ctrl.Setup(ctx, rec); err != nil {
				return fmt.Errorf("start executor for %s: %w", name, err)
			}
			defer ctrl.StopExecutor(rec)

			var raw json.RawMessage
			if payload != "" {
				raw = json.RawMessage(payload)
			} else {
				raw = json.RawMessage("{}")
			}

			requestID := uuid.New().String()
			start := time.Now()
			out, err := ctrl.Invoke(ctx, rec, domain.RawFunctionInput{RequestID: requestID, Payload: raw})
			duration := time.Since(start)

			result := output.InvokeResult{RequestID: requestID, DurationMs: duration.Milliseconds()}
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
				result.Output = make(map[string]string, len(out))
				for k, v := range out {
					result.Output[k] = string(v)
				}
			}

			printer := output.NewPrinter(output.FormatTable)
			return printer.PrintInvokeResult(result)
		},
	}

	cmd.Flags().StringVarP(&payload, "payload", "p", "", "JSON payload forwarded to the function as its raw input")
	return cmd
}
