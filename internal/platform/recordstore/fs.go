package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FSStore keeps each category as a directory under the base path. Records are
// <name>.json files; recency is the file modification time.
type FSStore struct {
	base string
}

// NewFSStore creates the base directory if needed and returns the store.
func NewFSStore(base string) (*FSStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FSStore{base: base}, nil
}

// Base returns the root directory of the store.
func (s *FSStore) Base() string { return s.base }

func (s *FSStore) categoryDir(category string) string {
	return filepath.Join(s.base, category)
}

func (s *FSStore) recordPath(category, name string) string {
	return filepath.Join(s.categoryDir(category), name+".json")
}

func (s *FSStore) Put(_ context.Context, category, name string, data map[string]any) error {
	dir := s.categoryDir(category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	// Write through a temp file so a concurrent reader never sees a
	// half-written record.
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.recordPath(category, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("place record: %w", err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, category, name string) (map[string]any, error) {
	b, err := os.ReadFile(s.recordPath(category, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", category, name, err)
	}
	return m, nil
}

func (s *FSStore) List(ctx context.Context, category string) ([]Record, error) {
	dir := s.categoryDir(category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read category dir: %w", err)
	}

	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat record: %w", err)
		}
		data, err := s.Get(ctx, category, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Record{
			Category: category,
			Name:     name,
			Data:     data,
			ModTime:  info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.Before(out[j].ModTime) })
	return out, nil
}

func (s *FSStore) GetLatest(ctx context.Context, category string) (*Record, error) {
	records, err := s.List(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrCategoryEmpty
	}
	latest := records[len(records)-1]
	return &latest, nil
}

func (s *FSStore) WriteArtifact(_ context.Context, category, filename string, content []byte) (string, error) {
	dir := s.categoryDir(category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}
	name := filename
	if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
		name = disambiguate(filename)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return name, nil
}

func (s *FSStore) ReadArtifact(_ context.Context, category, filename string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.categoryDir(category), filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return b, nil
}

// disambiguate inserts a short random suffix before the extension so an
// artifact never silently overwrites an earlier one with the same name.
func disambiguate(filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], ext)
}
