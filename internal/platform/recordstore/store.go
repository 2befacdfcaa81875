// Package recordstore persists intake records as named JSON mappings grouped
// into categories, plus rendered report artifacts. Three backends are
// provided: a filesystem store for single-node deployments, a PostgreSQL
// store, and an in-memory store for tests and demos.
package recordstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRecordNotFound is returned when no record exists under the
	// requested category and name.
	ErrRecordNotFound = errors.New("record not found")

	// ErrCategoryEmpty is returned by GetLatest when the category holds no
	// records at all.
	ErrCategoryEmpty = errors.New("category is empty")
)

// Record is a stored mapping with its placement metadata. ModTime orders
// records within a category; GetLatest returns the newest.
type Record struct {
	Category string         `json:"category"`
	Name     string         `json:"name"`
	Data     map[string]any `json:"data"`
	ModTime  time.Time      `json:"mod_time"`
}

// Store is the persistence contract for intake records and report artifacts.
type Store interface {
	// Put creates or replaces the record under category/name.
	Put(ctx context.Context, category, name string, data map[string]any) error

	// Get returns the record data, or ErrRecordNotFound.
	Get(ctx context.Context, category, name string) (map[string]any, error)

	// GetLatest returns the most recently written record in the category,
	// or ErrCategoryEmpty.
	GetLatest(ctx context.Context, category string) (*Record, error)

	// List returns all records in a category ordered oldest first.
	List(ctx context.Context, category string) ([]Record, error)

	// WriteArtifact stores a rendered report under the requested filename
	// and returns the name actually used. When the name is already taken
	// the store disambiguates it rather than overwriting.
	WriteArtifact(ctx context.Context, category, filename string, content []byte) (string, error)

	// ReadArtifact returns a stored artifact, or ErrRecordNotFound.
	ReadArtifact(ctx context.Context, category, filename string) ([]byte, error)
}
