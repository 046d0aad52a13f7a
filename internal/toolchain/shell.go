package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
)

// ShellSetup requires nothing beyond confirming a shell executable is
// reachable on PATH; there is no archive to download.
type ShellSetup struct {
	Executable string
}

func (s *ShellSetup) PreSetup(context.Context, environment.Environment) error { return nil }

func (s *ShellSetup) DoSetup(_ context.Context, _ environment.Environment) error {
	if _, err := exec.LookPath(s.executable()); err != nil {
		return fmt.Errorf("no shell executable available on PATH: %s", s.executable())
	}
	return nil
}

func (s *ShellSetup) PostSetup(context.Context, environment.Environment) error { return nil }

func (s *ShellSetup) executable() string {
	if s.Executable == "" {
		return "sh"
	}
	return s.Executable
}

// ShellLifecycle runs function source as a shell script piped on stdin.
type ShellLifecycle struct {
	NoopLifecycle
	Executable string
}

func (l *ShellLifecycle) Build(_ context.Context, code string) ([]byte, error) {
	return []byte(code), nil
}

func (l *ShellLifecycle) Execute(ctx context.Context, artifact []byte, input domain.RawFunctionInput, env environment.Environment) (string, error) {
	cmd := exec.CommandContext(ctx, l.executable())
	cmd.Dir = env.Root()
	cmd.Env = []string{"__MF__INPUTS=" + string(input.Payload)}
	cmd.Stdin = bytes.NewReader(artifact)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("execute shell function: %w", ctx.Err())
		}
		return "", fmt.Errorf("execute shell function: %w", err)
	}
	return stdout.String(), nil
}

func (l *ShellLifecycle) executable() string {
	if l.Executable == "" {
		return "sh"
	}
	return l.Executable
}
