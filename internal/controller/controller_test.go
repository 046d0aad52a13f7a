package controller

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/timertrigger"
	"github.com/oriys/minifaas/internal/toolchain"
)

type fakeLifecycle struct {
	toolchain.NoopLifecycle
}

func (fakeLifecycle) Build(ctx context.Context, code string) ([]byte, error) {
	return []byte(code), nil
}

func (fakeLifecycle) Execute(ctx context.Context, artifact []byte, input domain.RawFunctionInput, env environment.Environment) (string, error) {
	return "__MF__body:6f6b\n", nil
}

func newController(t *testing.T) *Controller {
	t.Helper()
	m := toolchain.NewMap()
	m.Register(domain.LanguageJavaScript, toolchain.Entry{Setup: toolchain.NoopSetup{}, Lifecycle: fakeLifecycle{}})

	router := httptrigger.NewRouter()
	scheduler := timertrigger.NewScheduler(time.Second)

	return New(t.TempDir(), m, router, scheduler, logs.NewCollector(), nil, time.Second)
}

func httpRecord(name string) *domain.FunctionRecord {
	return &domain.FunctionRecord{
		EnvironmentID: uuid.New(),
		Declaration: domain.FunctionDeclaration{
			Name:     name,
			Language: domain.LanguageJavaScript,
			Code:     "console.log('__MF__body:6f6b')",
			Trigger:  domain.HTTPTrigger(domain.MethodAll),
		},
	}
}

func TestControllerSetupAndInvoke(t *testing.T) {
	c := newController(t)
	rec := httpRecord("hello")

	if err := c.Setup(context.Background(), rec); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	out, err := c.Invoke(context.Background(), rec, domain.RawFunctionInput{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if string(out["body"]) != "ok" {
		t.Errorf("body = %q, want %q", out["body"], "ok")
	}
}

func TestControllerSetupRejectsUnknownLanguage(t *testing.T) {
	c := newController(t)
	rec := httpRecord("bad")
	rec.Declaration.Language = domain.LanguageUnknown

	if err := c.Setup(context.Background(), rec); err == nil {
		t.Fatal("expected error for unregistered language, got nil")
	}
}

func TestControllerDestroyStopsExecutorAndRemovesEnvironment(t *testing.T) {
	c := newController(t)
	rec := httpRecord("gone")

	if err := c.Setup(context.Background(), rec); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := c.Destroy(rec); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if _, err := c.Invoke(context.Background(), rec, domain.RawFunctionInput{}); err == nil {
		t.Fatal("expected error invoking a destroyed function, got nil")
	}
}

func TestControllerStartExecutorReplacesPrevious(t *testing.T) {
	c := newController(t)
	rec := httpRecord("replace-me")

	if err := c.Setup(context.Background(), rec); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	first := c.executors[rec.EnvironmentID]

	if err := c.Setup(context.Background(), rec); err != nil {
		t.Fatalf("Setup (replace): %v", err)
	}
	second := c.executors[rec.EnvironmentID]

	if first == second {
		t.Fatal("expected a distinct executor after re-setup")
	}
}
