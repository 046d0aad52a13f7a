package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/logging"
)

// JSONStore is the default Store: a map of function records serialized to
// a single JSON file on every write. Reads are served from the in-memory
// map under an RWMutex; writes copy a snapshot while holding the lock and
// marshal and write it to the file outside of it, so a slow disk never
// blocks readers.
type JSONStore struct {
	path string
	mu   sync.RWMutex
	data map[string]*domain.FunctionRecord
}

// NewJSONStore loads path into a JSONStore. Loading is tolerant: a missing
// file yields an empty store (the file is created on first write), and a
// file that fails to parse as JSON also yields an empty store rather than
// an error — only an unopenable/uncreatable path is a hard failure.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, data: make(map[string]*domain.FunctionRecord)}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var records map[string]*domain.FunctionRecord
		if jsonErr := json.Unmarshal(raw, &records); jsonErr != nil {
			logging.Op().Warn("function store file is not valid JSON, starting empty", "path", path, "error", jsonErr)
			return s, nil
		}
		s.data = records
	case os.IsNotExist(err):
		f, createErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if createErr != nil {
			return nil, fmt.Errorf("create function store file %s: %w", path, createErr)
		}
		_ = f.Close()
	default:
		return nil, fmt.Errorf("open function store file %s: %w", path, err)
	}

	return s, nil
}

func (s *JSONStore) Get(_ context.Context, name string) (*domain.FunctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *JSONStore) List(_ context.Context) ([]*domain.FunctionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.FunctionRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	return out, nil
}

func (s *JSONStore) Set(_ context.Context, decl domain.FunctionDeclaration) (*domain.FunctionRecord, error) {
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()

	s.mu.Lock()
	rec, exists := s.data[decl.Name]
	if exists {
		updated := *rec
		updated.Declaration = decl
		updated.UpdatedAt = now
		rec = &updated
		s.data[decl.Name] = rec
	} else {
		rec = &domain.FunctionRecord{
			Declaration:   decl,
			EnvironmentID: uuid.New(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.data[decl.Name] = rec
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persist(snapshot); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *JSONStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.data, name)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

func (s *JSONStore) Close() error { return nil }

// snapshotLocked must be called with s.mu held.
func (s *JSONStore) snapshotLocked() map[string]*domain.FunctionRecord {
	snapshot := make(map[string]*domain.FunctionRecord, len(s.data))
	for k, v := range s.data {
		copyRec := *v
		snapshot[k] = &copyRec
	}
	return snapshot
}

func (s *JSONStore) persist(snapshot map[string]*domain.FunctionRecord) error {
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal function store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write function store file %s: %w", s.path, err)
	}
	return nil
}
