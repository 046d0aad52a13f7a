// Package toolchain installs and drives the language runtimes functions are
// built and executed with. A toolchain has two contracts: Setup prepares an
// environment once (e.g. downloading an interpreter), and Lifecycle builds
// and executes a specific function's code against an already-set-up
// environment.
package toolchain

import (
	"context"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
)

// Setup prepares an Environment so that Lifecycle can later build and run
// code in it. Implementations that need no preparation may embed NoopSetup.
type Setup interface {
	PreSetup(ctx context.Context, env environment.Environment) error
	DoSetup(ctx context.Context, env environment.Environment) error
	PostSetup(ctx context.Context, env environment.Environment) error
}

// Lifecycle builds function source into an executable artifact and runs it
// against a single invocation's input. Implementations that need no
// pre/post hook may embed NoopLifecycle.
type Lifecycle interface {
	PreBuild(ctx context.Context) error
	Build(ctx context.Context, code string) ([]byte, error)
	PostBuild(ctx context.Context) error

	PreExecute(ctx context.Context, input domain.RawFunctionInput) error
	Execute(ctx context.Context, artifact []byte, input domain.RawFunctionInput, env environment.Environment) (string, error)
	PostExecute(ctx context.Context) error
}

// NoopSetup satisfies Setup with no-ops; embed it in toolchains that need
// nothing installed ahead of time.
type NoopSetup struct{}

func (NoopSetup) PreSetup(context.Context, environment.Environment) error  { return nil }
func (NoopSetup) DoSetup(context.Context, environment.Environment) error   { return nil }
func (NoopSetup) PostSetup(context.Context, environment.Environment) error { return nil }

// NoopLifecycle satisfies the optional hooks of Lifecycle; embed it and
// only override Build/Execute.
type NoopLifecycle struct{}

func (NoopLifecycle) PreBuild(context.Context) error  { return nil }
func (NoopLifecycle) PostBuild(context.Context) error { return nil }
func (NoopLifecycle) PreExecute(context.Context, domain.RawFunctionInput) error { return nil }
func (NoopLifecycle) PostExecute(context.Context) error { return nil }

// Entry pairs a Setup and Lifecycle implementation for one language.
type Entry struct {
	Setup     Setup
	Lifecycle Lifecycle
}

// Map selects a toolchain Entry by language.
type Map struct {
	entries map[domain.Language]Entry
}

func NewMap() *Map {
	return &Map{entries: make(map[domain.Language]Entry)}
}

func (m *Map) Register(lang domain.Language, entry Entry) {
	m.entries[lang] = entry
}

func (m *Map) Select(lang domain.Language) (Entry, bool) {
	entry, ok := m.entries[lang]
	return entry, ok
}
