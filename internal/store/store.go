// Package store persists FunctionDeclarations as FunctionRecords. The
// default backend is a single JSON file; an optional Postgres backend is
// available for deployments that share one store across hosts.
package store

import (
	"context"
	"fmt"

	"github.com/oriys/minifaas/internal/domain"
)

// Store is the durable backing for function declarations. All methods must
// be safe for concurrent use.
type Store interface {
	// Get returns the record for name, or an error if it doesn't exist.
	Get(ctx context.Context, name string) (*domain.FunctionRecord, error)
	// List returns every stored record.
	List(ctx context.Context) ([]*domain.FunctionRecord, error)
	// Set persists decl under its name, preserving the existing
	// environment id if a record by that name already exists.
	Set(ctx context.Context, decl domain.FunctionDeclaration) (*domain.FunctionRecord, error)
	// Delete removes the record for name. Deleting an unknown name is not
	// an error.
	Delete(ctx context.Context, name string) error
	Close() error
}

// ErrNotFound is returned by Get when no record exists for the given name.
var ErrNotFound = fmt.Errorf("function not found")
