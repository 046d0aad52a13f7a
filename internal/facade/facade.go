// Package facade provides RuntimeFacade, the single front door external
// callers (the HTTP API, the CLI) use to reach the control plane. It
// converts high-level requests into the right sequence of Controller calls
// so callers never need to know the controller's internal ordering rules.
package facade

import (
	"context"
	"fmt"

	"github.com/oriys/minifaas/internal/controller"
	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/store"
)

// Facade dispatches high-level function-management and invocation requests
// to the underlying Controller and FunctionStore.
type Facade struct {
	controller *controller.Controller
	store      store.Store
	router     *httptrigger.Router
}

func New(ctrl *controller.Controller, st store.Store, router *httptrigger.Router) *Facade {
	return &Facade{controller: ctrl, store: st, router: router}
}

// NewFunction persists decl and starts (or replaces) its executor.
func (f *Facade) NewFunction(ctx context.Context, decl domain.FunctionDeclaration) (*domain.FunctionRecord, error) {
	rec, err := f.store.Set(ctx, decl)
	if err != nil {
		return nil, fmt.Errorf("save function %s: %w", decl.Name, err)
	}
	if err := f.controller.Setup(ctx, rec); err != nil {
		return nil, fmt.Errorf("start function %s: %w", decl.Name, err)
	}
	return rec, nil
}

// DeleteFunction stops rec's executor, destroys its environment, and
// removes its declaration from the store.
func (f *Facade) DeleteFunction(ctx context.Context, name string) error {
	rec, err := f.store.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("delete function %s: %w", name, err)
	}
	f.controller.StopExecutor(rec)
	if err := f.controller.Destroy(rec); err != nil {
		return fmt.Errorf("destroy environment for %s: %w", name, err)
	}
	return f.store.Delete(ctx, name)
}

// Disable stops name's executor without deleting its declaration or
// environment; a later NewFunction call for the same name starts it again.
func (f *Facade) Disable(ctx context.Context, name string) error {
	rec, err := f.store.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("disable function %s: %w", name, err)
	}
	f.controller.StopExecutor(rec)
	return nil
}

// FunctionCall invokes name directly (bypassing trigger dispatch) with the
// given raw input and returns the sentinel-decoded output.
func (f *Facade) FunctionCall(ctx context.Context, name string, input domain.RawFunctionInput) (domain.RawFunctionOutput, error) {
	rec, err := f.store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("call function %s: %w", name, err)
	}
	if rec.TriggerOf().Kind == domain.TriggerInterval {
		return nil, fmt.Errorf("cannot call timers explicitly")
	}
	return f.controller.Invoke(ctx, rec, input)
}

// HTTPCall dispatches an HTTP-shaped request through the HTTP trigger
// router, which handles unsubscribed routes itself.
func (f *Facade) HTTPCall(ctx context.Context, req httptrigger.Request) (httptrigger.Response, error) {
	return f.router.Dispatch(ctx, req)
}

// FetchLogs returns up to lines lines of name's environment log, starting
// at startLine.
func (f *Facade) FetchLogs(ctx context.Context, name string, startLine, lines int) (string, error) {
	rec, err := f.store.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("fetch logs for %s: %w", name, err)
	}
	return f.controller.FetchLogs(rec, startLine, lines)
}

// ListFunctions returns every persisted function declaration.
func (f *Facade) ListFunctions(ctx context.Context) ([]*domain.FunctionRecord, error) {
	return f.store.List(ctx)
}

// Shutdown stops accepting new work at the store level. Executors already
// running are left for the process's own shutdown sequence to drain.
func (f *Facade) Shutdown() error {
	return f.store.Close()
}
