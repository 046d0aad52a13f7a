package toolchain

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
)

const interpreterFileName = "deno"

// osArchTuple maps Go's GOOS/GOARCH to the release archive naming scheme
// the interpreter's distributor uses.
func osArchTuple(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "x86_64-unknown-linux-gnu", nil
	case goos == "linux" && goarch == "arm64":
		return "aarch64-unknown-linux-gnu", nil
	case goos == "darwin" && goarch == "amd64":
		return "x86_64-apple-darwin", nil
	case goos == "darwin" && goarch == "arm64":
		return "aarch64-apple-darwin", nil
	case goos == "windows" && goarch == "amd64":
		return "x86_64-pc-windows-msvc", nil
	default:
		return "", fmt.Errorf("unsupported platform %s/%s", goos, goarch)
	}
}

// JSSetup installs a standalone JavaScript interpreter archive into the
// function's environment the first time it is set up.
type JSSetup struct {
	Version string
	Source  ArchiveSource
}

func (s *JSSetup) PreSetup(ctx context.Context, env environment.Environment) error {
	return nil
}

func (s *JSSetup) DoSetup(ctx context.Context, env environment.Environment) error {
	if env.HasFile(interpreterFileName) {
		return nil
	}
	tuple, err := osArchTuple(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("v%s/deno-%s.zip", s.Version, tuple)

	body, err := s.Source.Fetch(ctx, key)
	if err != nil {
		return err
	}
	defer body.Close()

	archive, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read interpreter archive: %w", err)
	}

	return extractBinary(archive, env.AbsolutePath(interpreterFileName))
}

func (s *JSSetup) PostSetup(ctx context.Context, env environment.Environment) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(env.AbsolutePath(interpreterFileName), 0o755)
}

func extractBinary(archive []byte, dest string) error {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open interpreter archive: %w", err)
	}
	if len(r.File) == 0 {
		return fmt.Errorf("interpreter archive is empty")
	}
	src, err := r.File[0].Open()
	if err != nil {
		return fmt.Errorf("open interpreter binary in archive: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create interpreter binary at %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("extract interpreter binary: %w", err)
	}
	return nil
}

// JSLifecycle builds and runs JavaScript function code through the
// installed interpreter, passing the invocation payload via an environment
// variable and reading the sentinel-formatted response from stdout.
type JSLifecycle struct {
	NoopLifecycle
}

func (l *JSLifecycle) Build(ctx context.Context, code string) ([]byte, error) {
	return []byte(code), nil
}

func (l *JSLifecycle) Execute(ctx context.Context, artifact []byte, input domain.RawFunctionInput, env environment.Environment) (string, error) {
	cmd := exec.CommandContext(ctx, env.AbsolutePath(interpreterFileName), "run", "-")
	cmd.Env = []string{"__MF__INPUTS=" + string(input.Payload)}
	cmd.Dir = env.Root()

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stdin = bytes.NewReader(artifact)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("execute javascript function: %w", ctx.Err())
		}
		return "", fmt.Errorf("execute javascript function: %w", err)
	}

	return stdout.String(), nil
}
