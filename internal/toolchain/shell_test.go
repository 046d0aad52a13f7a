package toolchain

import (
	"context"
	"strings"
	"testing"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
)

func TestShellSetupDoSetupFindsShell(t *testing.T) {
	s := &ShellSetup{}
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("environment.Create: %v", err)
	}
	if err := s.DoSetup(context.Background(), env); err != nil {
		t.Fatalf("DoSetup: %v", err)
	}
}

func TestShellSetupDoSetupRejectsUnknownExecutable(t *testing.T) {
	s := &ShellSetup{Executable: "definitely-not-a-real-shell"}
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("environment.Create: %v", err)
	}
	if err := s.DoSetup(context.Background(), env); err == nil {
		t.Fatal("expected error for a nonexistent executable")
	}
}

func TestShellLifecycleBuildPassesCodeThrough(t *testing.T) {
	l := &ShellLifecycle{}
	artifact, err := l.Build(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if string(artifact) != "echo hello" {
		t.Errorf("Build() = %q, want %q", artifact, "echo hello")
	}
}

func TestShellLifecycleExecuteRunsScript(t *testing.T) {
	l := &ShellLifecycle{}
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("environment.Create: %v", err)
	}

	artifact, err := l.Build(context.Background(), `echo "__MF__status:ok"`)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := l.Execute(context.Background(), artifact, domain.RawFunctionInput{RequestID: "r1"}, env)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "__MF__status:ok") {
		t.Errorf("Execute output = %q, want it to contain the sentinel line", out)
	}
}

func TestShellLifecycleExecutePropagatesScriptFailure(t *testing.T) {
	l := &ShellLifecycle{}
	env, err := environment.Create(t.TempDir())
	if err != nil {
		t.Fatalf("environment.Create: %v", err)
	}

	artifact, err := l.Build(context.Background(), "exit 1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := l.Execute(context.Background(), artifact, domain.RawFunctionInput{}, env); err == nil {
		t.Fatal("expected an error from a failing script")
	}
}
