// Package controller implements RuntimeController, the central coordinator
// owning the environment registry, toolchain map, executor registry, and
// the two trigger components. It is the only place that starts, replaces,
// and stops FunctionExecutors, so it is the single source of truth for
// "at most one live executor per environment".
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
	"github.com/oriys/minifaas/internal/executor"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/logging"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/metrics"
	"github.com/oriys/minifaas/internal/timertrigger"
	"github.com/oriys/minifaas/internal/toolchain"
)

// Controller owns the long-lived state of the runtime: which environments
// exist, which toolchain each language maps to, which executor is running
// for each environment, and the trigger components executors are
// subscribed to. All mutating operations hold a single mutex — the control
// plane's traffic volume (function management operations, not invocations)
// does not warrant finer-grained locking.
type Controller struct {
	mu sync.Mutex

	envs       *environment.Registry
	toolchains *toolchain.Map
	router     *httptrigger.Router
	scheduler  *timertrigger.Scheduler
	logs       *logs.Collector
	liveTail   logs.LiveTail

	executorTimeout time.Duration
	executors       map[uuid.UUID]*executor.FunctionExecutor
}

// New constructs a Controller. envRoot is the filesystem root environments
// are created under.
func New(envRoot string, toolchains *toolchain.Map, router *httptrigger.Router, scheduler *timertrigger.Scheduler, collector *logs.Collector, liveTail logs.LiveTail, executorTimeout time.Duration) *Controller {
	if liveTail == nil {
		liveTail = logs.NopLiveTail{}
	}
	return &Controller{
		envs:            environment.NewRegistry(envRoot),
		toolchains:      toolchains,
		router:          router,
		scheduler:       scheduler,
		logs:            collector,
		liveTail:        liveTail,
		executorTimeout: executorTimeout,
		executors:       make(map[uuid.UUID]*executor.FunctionExecutor),
	}
}

// Reconcile reconstructs the environment registry from disk, then starts an
// executor for every record whose language has a registered toolchain.
// Records in domain.LanguageUnknown (or any language without an entry in
// the toolchain map) are skipped: they exist in the function store but have
// no running executor until their declaration is corrected.
func (c *Controller) Reconcile(ctx context.Context, records []*domain.FunctionRecord) error {
	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.EnvironmentID)
	}
	if err := c.envs.Reconcile(ids); err != nil {
		return fmt.Errorf("reconcile environments: %w", err)
	}

	for _, rec := range records {
		if err := c.Setup(ctx, rec); err != nil {
			logging.Op().Error("failed to start executor during reconcile", "function", rec.Name(), "error", err)
		}
	}
	return nil
}

// Setup brings up (or replaces) the executor for rec. Setup runs the
// toolchain's Setup contract on every call (toolchains skip work that is
// already done, e.g. an interpreter that is already installed), then
// StartExecutor (re)binds the function's current declaration.
func (c *Controller) Setup(ctx context.Context, rec *domain.FunctionRecord) error {
	entry, ok := c.toolchains.Select(rec.Language())
	if !ok {
		return fmt.Errorf("no toolchain registered for language %q", rec.Language())
	}

	env, err := c.envs.GetOrCreate(rec.EnvironmentID)
	if err != nil {
		return fmt.Errorf("get or create environment for %s: %w", rec.Name(), err)
	}

	if err := entry.Setup.PreSetup(ctx, env); err != nil {
		return fmt.Errorf("pre-setup %s: %w", rec.Name(), err)
	}
	if err := entry.Setup.DoSetup(ctx, env); err != nil {
		return fmt.Errorf("setup %s: %w", rec.Name(), err)
	}
	if err := entry.Setup.PostSetup(ctx, env); err != nil {
		return fmt.Errorf("post-setup %s: %w", rec.Name(), err)
	}

	return c.StartExecutor(ctx, rec, entry.Lifecycle, env)
}

// StartExecutor starts a new executor for rec and installs it in place of
// whatever was previously running for the same environment. The ordering
// matters: the old executor is shut down and unsubscribed from its trigger
// before the new one is inserted and subscribed, so no trigger is ever
// routed to both. The controller's mutex is held across the whole swap.
func (c *Controller) StartExecutor(ctx context.Context, rec *domain.FunctionRecord, lifecycle toolchain.Lifecycle, env environment.Environment) error {
	newExec := executor.New(env, rec, lifecycle, c.logs, c.liveTail, c.executorTimeout)

	c.mu.Lock()
	old, hadOld := c.executors[rec.EnvironmentID]
	if hadOld {
		old.Shutdown()
		c.unsubscribeTrigger(rec)
	}
	c.executors[rec.EnvironmentID] = newExec
	c.subscribeTrigger(rec, newExec)
	c.mu.Unlock()

	metrics.RecordExecutorStarted()
	c.refreshActiveExecutorCount()
	return nil
}

// StopExecutor shuts down and unsubscribes the executor for rec, if one is
// running, but deliberately leaves its entry in the executor registry so a
// subsequent StartExecutor can replace it without first checking for a
// stale map entry elsewhere.
func (c *Controller) StopExecutor(rec *domain.FunctionRecord) {
	c.mu.Lock()
	exec, ok := c.executors[rec.EnvironmentID]
	c.mu.Unlock()

	if !ok {
		return
	}

	c.unsubscribeTrigger(rec)
	exec.Shutdown()
	metrics.RecordExecutorStopped()
	c.refreshActiveExecutorCount()
}

// Destroy removes and deletes rec's environment from disk. Callers that
// also want the executor stopped first (RuntimeFacade.DeleteFunction does)
// call StopExecutor themselves before Destroy.
func (c *Controller) Destroy(rec *domain.FunctionRecord) error {
	c.mu.Lock()
	delete(c.executors, rec.EnvironmentID)
	c.mu.Unlock()

	if err := c.envs.Remove(rec.EnvironmentID); err != nil {
		return fmt.Errorf("destroy environment for %s: %w", rec.Name(), err)
	}
	return nil
}

// Invoke dispatches directly to the executor for rec's environment,
// bypassing the trigger components. This is the path RuntimeFacade.
// FunctionCall takes for on-demand (non-triggered) invocation.
func (c *Controller) Invoke(ctx context.Context, rec *domain.FunctionRecord, input domain.RawFunctionInput) (domain.RawFunctionOutput, error) {
	c.mu.Lock()
	exec, ok := c.executors[rec.EnvironmentID]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no running executor for %s", rec.Name())
	}
	return exec.Invoke(ctx, input)
}

// FetchLogs returns up to lines lines of rec's environment log, starting at
// startLine. A missing log file yields "".
func (c *Controller) FetchLogs(rec *domain.FunctionRecord, startLine, lines int) (string, error) {
	env, err := c.envs.GetOrCreate(rec.EnvironmentID)
	if err != nil {
		return "", fmt.Errorf("get or create environment for %s: %w", rec.Name(), err)
	}
	return c.logs.Lines(env, startLine, lines)
}

func (c *Controller) subscribeTrigger(rec *domain.FunctionRecord, exec *executor.FunctionExecutor) {
	switch rec.TriggerOf().Kind {
	case domain.TriggerHTTP:
		c.router.Subscribe(rec.Name(), exec, rec.TriggerOf().Method)
	case domain.TriggerInterval:
		schedule, err := timertrigger.ParseSchedule(rec.TriggerOf().Cron)
		if err != nil {
			logging.Op().Error("invalid cron expression, function will not fire", "function", rec.Name(), "error", err)
			return
		}
		c.scheduler.Subscribe(rec.Name(), exec, schedule)
	case domain.TriggerNone:
	}
}

func (c *Controller) unsubscribeTrigger(rec *domain.FunctionRecord) {
	switch rec.TriggerOf().Kind {
	case domain.TriggerHTTP:
		c.router.Unsubscribe(rec.Name())
	case domain.TriggerInterval:
		c.scheduler.Unsubscribe(rec.Name())
	case domain.TriggerNone:
	}
}

func (c *Controller) refreshActiveExecutorCount() {
	c.mu.Lock()
	count := len(c.executors)
	c.mu.Unlock()
	metrics.SetActiveExecutors(count)
}
