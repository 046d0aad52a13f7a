package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oriys/minifaas/internal/domain"
)

// PostgresStore is an alternative Store backend for deployments that share
// one function catalog across several hosts. It keeps the same semantics
// as JSONStore (tolerant reads, stable environment ids) on top of a single
// table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS minifaas_functions (
	name           TEXT PRIMARY KEY,
	environment_id UUID NOT NULL,
	declaration    JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);`

// NewPostgresStore connects to dsn and ensures the backing table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure minifaas_functions table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*domain.FunctionRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT environment_id, declaration, created_at, updated_at FROM minifaas_functions WHERE name = $1`, name)
	return scanRecord(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*domain.FunctionRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT environment_id, declaration, created_at, updated_at FROM minifaas_functions`)
	if err != nil {
		return nil, fmt.Errorf("list functions: %w", err)
	}
	defer rows.Close()

	var out []*domain.FunctionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Set(ctx context.Context, decl domain.FunctionDeclaration) (*domain.FunctionRecord, error) {
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(decl)
	if err != nil {
		return nil, fmt.Errorf("marshal declaration: %w", err)
	}

	now := time.Now()
	newEnvID := uuid.New()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO minifaas_functions (name, environment_id, declaration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (name) DO UPDATE
		SET declaration = EXCLUDED.declaration, updated_at = EXCLUDED.updated_at
		RETURNING environment_id, declaration, created_at, updated_at`,
		decl.Name, newEnvID, raw, now)
	return scanRecord(row)
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM minifaas_functions WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete function %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.FunctionRecord, error) {
	var (
		envID     uuid.UUID
		raw       []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&envID, &raw, &createdAt, &updatedAt); err != nil {
		return nil, ErrNotFound
	}

	var decl domain.FunctionDeclaration
	if err := json.Unmarshal(raw, &decl); err != nil {
		return nil, fmt.Errorf("unmarshal declaration: %w", err)
	}

	return &domain.FunctionRecord{
		Declaration:   decl,
		EnvironmentID: envID,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
