package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestCreateWithID(t *testing.T) {
	root := filepath.Join(t.TempDir(), "env")
	id := uuid.New()

	env, err := CreateWithID(root, id)
	if err != nil {
		t.Fatalf("CreateWithID: %v", err)
	}
	if env.ID() != id {
		t.Errorf("ID() = %s, want %s", env.ID(), id)
	}
	if env.Root() != root {
		t.Errorf("Root() = %q, want %q", env.Root(), root)
	}

	sentinel := filepath.Join(root, idFileName)
	if _, err := os.Stat(sentinel); err != nil {
		t.Fatalf("expected sentinel file: %v", err)
	}

	// Re-creating the same id is not an error.
	if _, err := CreateWithID(root, id); err != nil {
		t.Fatalf("re-CreateWithID: %v", err)
	}
}

func TestEnvironmentFileHelpers(t *testing.T) {
	root := t.TempDir()
	env, err := Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if env.HasFile("code.js") {
		t.Fatal("expected code.js to not exist yet")
	}

	f, err := env.AddFile("code.js")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	_, _ = f.WriteString("export default () => {}")
	f.Close()

	if !env.HasFile("code.js") {
		t.Error("expected code.js to exist after AddFile")
	}
	if env.HasDir("code.js") {
		t.Error("code.js is a file, not a dir")
	}

	if err := env.AddDir("nested/dir"); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if !env.HasDir("nested/dir") {
		t.Error("expected nested/dir to exist")
	}

	want := filepath.Join(env.Root(), "nested/dir")
	if got := env.AbsolutePath("nested/dir"); got != want {
		t.Errorf("AbsolutePath = %q, want %q", got, want)
	}
}

func TestEnvironmentDelete(t *testing.T) {
	root := t.TempDir()
	env, err := Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := env.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("expected root to be removed, stat err = %v", err)
	}
}

func TestIDFromDirRoundTrip(t *testing.T) {
	root := t.TempDir()
	id := uuid.New()
	if _, err := CreateWithID(root, id); err != nil {
		t.Fatalf("CreateWithID: %v", err)
	}

	got, ok := idFromDir(root)
	if !ok {
		t.Fatal("expected sentinel to be recognized")
	}
	if got != id {
		t.Errorf("idFromDir = %s, want %s", got, id)
	}
}

func TestIDFromDirMissingSentinel(t *testing.T) {
	root := t.TempDir()
	if _, ok := idFromDir(root); ok {
		t.Fatal("expected no id for a directory without a sentinel")
	}
}
