// Package executor runs one function's build+exec+parse pipeline.
//
// # Invocation pipeline
//
// On every RawFunctionInput, a FunctionExecutor builds the function's code
// into an artifact, executes that artifact against the function's
// environment, appends the raw stdout to the environment's log file, and
// parses the stdout for sentinel-prefixed fields. The parsed map is the
// executor's response; trigger components (HttpTriggerRouter,
// TimerTriggerScheduler) interpret it according to their own conventions.
//
// # Concurrency
//
// A FunctionExecutor has no internal queue: Invoke may be called
// concurrently by multiple goroutines, and each call runs its own build and
// child process independently. Concurrent invocations of the same function
// therefore share nothing but the log file, whose writes the logs.Collector
// serializes per environment.
//
// # Failure behaviour
//
// Build or Execute errors abort the invocation and are returned to the
// caller. If Execute produced partial stdout before failing, that output is
// still appended to the log file on a best-effort basis — log durability is
// not contingent on the invocation's success.
package executor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
	"github.com/oriys/minifaas/internal/logging"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/metrics"
	"github.com/oriys/minifaas/internal/observability"
	"github.com/oriys/minifaas/internal/outputparser"
	"github.com/oriys/minifaas/internal/toolchain"
)

// FunctionExecutor is bound to exactly one function for its lifetime. It is
// replaced, never mutated, when the function's declaration changes; see
// RuntimeController's executor replacement ordering.
type FunctionExecutor struct {
	env       environment.Environment
	record    *domain.FunctionRecord
	lifecycle toolchain.Lifecycle
	logs      *logs.Collector
	liveTail  logs.LiveTail
	parser    *outputparser.Parser
	timeout   time.Duration

	closed atomic.Bool
}

// New constructs a FunctionExecutor for record, bound to env and lifecycle.
// timeout bounds every call to Execute; zero means no deadline is imposed
// beyond the caller's own context.
func New(env environment.Environment, record *domain.FunctionRecord, lifecycle toolchain.Lifecycle, collector *logs.Collector, liveTail logs.LiveTail, timeout time.Duration) *FunctionExecutor {
	if liveTail == nil {
		liveTail = logs.NopLiveTail{}
	}
	return &FunctionExecutor{
		env:       env,
		record:    record,
		lifecycle: lifecycle,
		logs:      collector,
		liveTail:  liveTail,
		parser:    outputparser.New("__MF__"),
		timeout:   timeout,
	}
}

// EnvironmentID reports the UUID of the environment this executor runs
// against.
func (e *FunctionExecutor) EnvironmentID() uuid.UUID {
	return e.env.ID()
}

// Invoke runs the build+exec+parse pipeline once against input, returning
// the sentinel-decoded output map. It refuses new work once Shutdown has
// been called.
func (e *FunctionExecutor) Invoke(ctx context.Context, input domain.RawFunctionInput) (domain.RawFunctionOutput, error) {
	if e.closed.Load() {
		return nil, fmt.Errorf("executor for %s has shut down", e.record.Name())
	}

	start := time.Now()

	ctx, span := observability.StartSpan(ctx, "function.invoke",
		observability.AttrFunctionName.String(e.record.Name()),
		observability.AttrEnvironment.String(e.env.ID().String()),
		observability.AttrLanguage.String(string(e.record.Language())),
		observability.AttrRequestID.String(input.RequestID),
	)
	defer span.End()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if err := e.lifecycle.PreBuild(ctx); err != nil {
		return nil, e.fail(span, start, fmt.Errorf("pre-build %s: %w", e.record.Name(), err))
	}
	artifact, err := e.lifecycle.Build(ctx, e.record.Code())
	if err != nil {
		return nil, e.fail(span, start, fmt.Errorf("build %s: %w", e.record.Name(), err))
	}
	if err := e.lifecycle.PostBuild(ctx); err != nil {
		return nil, e.fail(span, start, fmt.Errorf("post-build %s: %w", e.record.Name(), err))
	}

	if err := e.lifecycle.PreExecute(ctx, input); err != nil {
		return nil, e.fail(span, start, fmt.Errorf("pre-execute %s: %w", e.record.Name(), err))
	}
	stdout, execErr := e.lifecycle.Execute(ctx, artifact, input, e.env)

	if stdout != "" {
		if appendErr := e.logs.Append(e.env, []byte(stdout)); appendErr != nil {
			logging.Op().Warn("failed to append invocation log", "function", e.record.Name(), "error", appendErr)
		}
		e.publishLiveTail(ctx, input, stdout)
	}

	if execErr != nil {
		return nil, e.fail(span, start, fmt.Errorf("execute %s: %w", e.record.Name(), execErr))
	}
	if err := e.lifecycle.PostExecute(ctx); err != nil {
		return nil, e.fail(span, start, fmt.Errorf("post-execute %s: %w", e.record.Name(), err))
	}

	parsed, err := e.parser.Parse(strings.NewReader(stdout))
	if err != nil {
		return nil, e.fail(span, start, fmt.Errorf("parse output of %s: %w", e.record.Name(), err))
	}

	e.recordInvocation(start, true)
	observability.SetSpanOK(span)
	span.SetAttributes(observability.AttrDurationMs.Int64(time.Since(start).Milliseconds()))
	return domain.RawFunctionOutput(parsed), nil
}

// fail records the failed invocation's metrics and span status, and returns
// err unchanged so callers can write `return nil, e.fail(span, start, err)`.
func (e *FunctionExecutor) fail(span trace.Span, start time.Time, err error) error {
	e.recordInvocation(start, false)
	observability.SetSpanError(span, err)
	return err
}

// Shutdown stops the executor from accepting new work. In-flight Invoke
// calls are left to finish; Shutdown does not cancel them.
func (e *FunctionExecutor) Shutdown() {
	e.closed.Store(true)
}

func (e *FunctionExecutor) recordInvocation(start time.Time, success bool) {
	metrics.RecordInvocation(e.record.Name(), string(e.record.Language()), time.Since(start).Milliseconds(), success)
}

func (e *FunctionExecutor) publishLiveTail(ctx context.Context, input domain.RawFunctionInput, stdout string) {
	entry := logs.Entry{
		Timestamp: time.Now(),
		RequestID: input.RequestID,
		Function:  e.record.Name(),
		Line:      stdout,
	}
	if err := e.liveTail.Publish(ctx, e.env.ID().String(), entry); err != nil {
		logging.Op().Warn("failed to publish live-tail entry", "function", e.record.Name(), "error", err)
	}
}
