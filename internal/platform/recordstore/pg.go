package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is the SQL DDL for the record store tables. It is safe to execute
// multiple times (uses IF NOT EXISTS) and can run as a startup step.
const Migration = `
CREATE TABLE IF NOT EXISTS intake_records (
    category    TEXT NOT NULL,
    name        TEXT NOT NULL,
    data        JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (category, name)
);

CREATE INDEX IF NOT EXISTS idx_intake_records_category_updated
    ON intake_records (category, updated_at);

CREATE TABLE IF NOT EXISTS intake_artifacts (
    category    TEXT NOT NULL,
    filename    TEXT NOT NULL,
    content     BYTEA NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (category, filename)
);
`

// PGStore is a PostgreSQL-backed Store. Records live in intake_records as
// JSONB; recency is the updated_at column.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Pool exposes the underlying connection pool for health checks.
func (s *PGStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Migrate creates the store tables if they do not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Migration); err != nil {
		return fmt.Errorf("migrate record store: %w", err)
	}
	return nil
}

func (s *PGStore) Put(ctx context.Context, category, name string, data map[string]any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO intake_records (category, name, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (category, name)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		category, name, b)
	if err != nil {
		return fmt.Errorf("store record %s/%s: %w", category, name, err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, category, name string) (map[string]any, error) {
	var b []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM intake_records WHERE category = $1 AND name = $2`,
		category, name).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record %s/%s: %w", category, name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", category, name, err)
	}
	return m, nil
}

func (s *PGStore) List(ctx context.Context, category string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, data, updated_at
		FROM intake_records
		WHERE category = $1
		ORDER BY updated_at ASC, name ASC`,
		category)
	if err != nil {
		return nil, fmt.Errorf("list records in %s: %w", category, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec := Record{Category: category}
		var b []byte
		if err := rows.Scan(&rec.Name, &b, &rec.ModTime); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(b, &rec.Data); err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w", category, rec.Name, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PGStore) GetLatest(ctx context.Context, category string) (*Record, error) {
	rec := Record{Category: category}
	var b []byte
	err := s.pool.QueryRow(ctx, `
		SELECT name, data, updated_at
		FROM intake_records
		WHERE category = $1
		ORDER BY updated_at DESC, name DESC
		LIMIT 1`,
		category).Scan(&rec.Name, &b, &rec.ModTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load latest record in %s: %w", category, err)
	}
	if err := json.Unmarshal(b, &rec.Data); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", category, rec.Name, err)
	}
	return &rec, nil
}

func (s *PGStore) WriteArtifact(ctx context.Context, category, filename string, content []byte) (string, error) {
	name := filename
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM intake_artifacts WHERE category = $1 AND filename = $2)`,
		category, name).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("check artifact %s/%s: %w", category, name, err)
	}
	if exists {
		name = disambiguate(filename)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO intake_artifacts (category, filename, content) VALUES ($1, $2, $3)`,
		category, name, content)
	if err != nil {
		return "", fmt.Errorf("store artifact %s/%s: %w", category, name, err)
	}
	return name, nil
}

func (s *PGStore) ReadArtifact(ctx context.Context, category, filename string) ([]byte, error) {
	var b []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM intake_artifacts WHERE category = $1 AND filename = $2`,
		category, filename).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %s/%s: %w", category, filename, err)
	}
	return b, nil
}
