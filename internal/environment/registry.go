package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oriys/minifaas/internal/logging"
)

// Registry tracks every Environment known to the runtime, keyed by id.
// It is the Go counterpart of the source's Environments collection.
type Registry struct {
	root string
	mu   sync.RWMutex
	envs map[uuid.UUID]Environment
}

// NewRegistry creates an empty registry rooted at root. Callers normally
// follow this with Reconcile to populate it from disk.
func NewRegistry(root string) *Registry {
	return &Registry{root: root, envs: make(map[uuid.UUID]Environment)}
}

// Reconcile scans root for existing environment directories (recognized by
// their id sentinel file), adopts them, and creates a fresh environment for
// every id in expected that wasn't found on disk. Directories that exist
// but carry no recognizable sentinel are left alone (orphans are tolerated,
// never deleted).
func (r *Registry) Reconcile(expected []uuid.UUID) error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("create environment root %s: %w", r.root, err)
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("read environment root %s: %w", r.root, err)
	}

	type found struct {
		env Environment
	}
	results := make([]*found, len(entries))

	g := new(errgroup.Group)
	for i, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		i, entry := i, entry
		g.Go(func() error {
			dir := filepath.Join(r.root, entry.Name())
			id, ok := idFromDir(dir)
			if !ok {
				return nil // orphan directory, not one of ours
			}
			results[i] = &found{env: Environment{root: dir, id: id}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range results {
		if f != nil {
			r.envs[f.env.id] = f.env
		}
	}

	for _, id := range expected {
		if _, ok := r.envs[id]; ok {
			continue
		}
		env, err := CreateWithID(filepath.Join(r.root, id.String()), id)
		if err != nil {
			return fmt.Errorf("create missing environment %s: %w", id, err)
		}
		r.envs[id] = env
		logging.Op().Info("created missing environment during reconcile", "id", id)
	}

	logging.Op().Info("environment registry reconciled", "count", len(r.envs))
	return nil
}

// Get returns the environment for id, if known.
func (r *Registry) Get(id uuid.UUID) (Environment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	env, ok := r.envs[id]
	return env, ok
}

// GetOrCreate returns the environment for id, creating it on disk first if
// this is the first time the registry has seen it.
func (r *Registry) GetOrCreate(id uuid.UUID) (Environment, error) {
	if env, ok := r.Get(id); ok {
		return env, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if env, ok := r.envs[id]; ok {
		return env, nil
	}
	env, err := CreateWithID(filepath.Join(r.root, id.String()), id)
	if err != nil {
		return Environment{}, err
	}
	r.envs[id] = env
	return env, nil
}

// Remove deletes the environment's directory and forgets about it. Removing
// an unknown id is an error.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	env, ok := r.envs[id]
	if !ok {
		return fmt.Errorf("environment %s not found", id)
	}
	if err := env.Delete(); err != nil {
		return err
	}
	delete(r.envs, id)
	return nil
}
