package executor

import (
	"context"
	"testing"
	"time"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/toolchain"
)

type fakeLifecycle struct {
	toolchain.NoopLifecycle
	stdout string
	err    error
}

func (f *fakeLifecycle) Build(ctx context.Context, code string) ([]byte, error) {
	return []byte(code), nil
}

func (f *fakeLifecycle) Execute(ctx context.Context, artifact []byte, input domain.RawFunctionInput, env environment.Environment) (string, error) {
	return f.stdout, f.err
}

func newRecord(name string) *domain.FunctionRecord {
	return &domain.FunctionRecord{
		Declaration: domain.FunctionDeclaration{
			Name:     name,
			Language: domain.LanguageJavaScript,
			Code:     "console.log('__MF__body:68656c6c6f')",
			Trigger:  domain.HTTPTrigger(domain.MethodAll),
		},
	}
}

func TestFunctionExecutorInvokeParsesOutput(t *testing.T) {
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	lc := &fakeLifecycle{stdout: "__MF__body:68656c6c6f\n"}
	ex := New(env, newRecord("hello"), lc, logs.NewCollector(), nil, time.Second)

	out, err := ex.Invoke(context.Background(), domain.RawFunctionInput{RequestID: "r1"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if string(out["body"]) != "hello" {
		t.Errorf("body = %q, want %q", out["body"], "hello")
	}
}

func TestFunctionExecutorInvokeAppendsLog(t *testing.T) {
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	collector := logs.NewCollector()
	lc := &fakeLifecycle{stdout: "plain log line\n"}
	ex := New(env, newRecord("logger"), lc, collector, nil, time.Second)

	if _, err := ex.Invoke(context.Background(), domain.RawFunctionInput{RequestID: "r1"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	got, err := collector.Lines(env, 0, 10)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if got != "plain log line" {
		t.Errorf("log lines = %q, want %q", got, "plain log line")
	}
}

func TestFunctionExecutorShutdownRejectsNewWork(t *testing.T) {
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ex := New(env, newRecord("stoppable"), &fakeLifecycle{}, logs.NewCollector(), nil, time.Second)
	ex.Shutdown()

	if _, err := ex.Invoke(context.Background(), domain.RawFunctionInput{}); err == nil {
		t.Fatal("expected error after Shutdown, got nil")
	}
}

func TestFunctionExecutorInvokeSurfacesExecuteError(t *testing.T) {
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	lc := &fakeLifecycle{err: context.DeadlineExceeded}
	ex := New(env, newRecord("failing"), lc, logs.NewCollector(), nil, time.Second)

	if _, err := ex.Invoke(context.Background(), domain.RawFunctionInput{}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
