// Package environment manages the on-disk working directories functions
// run in: one directory per function, identified by a UUID recorded in a
// sentinel file so it can be recovered after a restart.
package environment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const idFileName = ".minifaas-id"

// Environment is a directory on disk plus the UUID the runtime recognizes
// it by. Every method is safe to call concurrently on distinct receivers;
// a single Environment value is not itself safe for concurrent writers
// (callers serialize access the same way RuntimeController does for its
// other state).
type Environment struct {
	root string
	id   uuid.UUID
}

// CreateWithID creates the environment directory (and any missing parents)
// at root, writes the id sentinel, and returns the resulting Environment.
// Re-creating an existing environment with the same id is not an error.
func CreateWithID(root string, id uuid.UUID) (Environment, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Environment{}, fmt.Errorf("create environment dir %s: %w", root, err)
	}
	if err := os.WriteFile(filepath.Join(root, idFileName), id[:], 0o644); err != nil {
		return Environment{}, fmt.Errorf("write id sentinel for %s: %w", root, err)
	}
	return Environment{root: root, id: id}, nil
}

// Create generates a fresh random id and creates the environment for it.
func Create(root string) (Environment, error) {
	return CreateWithID(root, uuid.New())
}

func (e Environment) ID() uuid.UUID { return e.id }
func (e Environment) Root() string  { return e.root }

// Delete removes the environment directory and everything under it.
func (e Environment) Delete() error {
	if err := os.RemoveAll(e.root); err != nil {
		return fmt.Errorf("delete environment %s: %w", e.id, err)
	}
	return nil
}

// HasFile reports whether subPath exists under the environment root and is
// a regular file.
func (e Environment) HasFile(subPath string) bool {
	info, err := os.Stat(filepath.Join(e.root, subPath))
	return err == nil && !info.IsDir()
}

// HasDir reports whether subPath exists under the environment root and is
// a directory.
func (e Environment) HasDir(subPath string) bool {
	info, err := os.Stat(filepath.Join(e.root, subPath))
	return err == nil && info.IsDir()
}

// AddFile creates (or truncates) subPath under the environment root and
// returns it opened for writing. Creating a file that already exists is
// not an error: the caller gets a fresh, empty file.
func (e Environment) AddFile(subPath string) (*os.File, error) {
	p := filepath.Join(e.root, subPath)
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("add file %s: %w", p, err)
	}
	return f, nil
}

// AddDir creates subPath (and any missing parents) under the environment
// root. Creating a directory that already exists is not an error.
func (e Environment) AddDir(subPath string) error {
	p := filepath.Join(e.root, subPath)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return fmt.Errorf("add dir %s: %w", p, err)
	}
	return nil
}

// AbsolutePath resolves subPath relative to the environment root.
func (e Environment) AbsolutePath(subPath string) string {
	return filepath.Join(e.root, subPath)
}

func (e Environment) String() string {
	return fmt.Sprintf("Environment %s at %s", e.id, e.root)
}

func idFromDir(dir string) (uuid.UUID, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return uuid.UUID{}, false
	}
	var lastMatch string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Base(entry.Name()) == idFileName || entry.Name() == idFileName {
			lastMatch = entry.Name()
		}
	}
	if lastMatch == "" {
		return uuid.UUID{}, false
	}
	raw, err := os.ReadFile(filepath.Join(dir, lastMatch))
	if err != nil {
		return uuid.UUID{}, false
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
