package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a concurrency-safe in-memory Store for tests and demo runs.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]map[string]memoryRecord
	artifacts map[string]map[string][]byte
	seq       int64
	now       func() time.Time
}

type memoryRecord struct {
	data    map[string]any
	modTime time.Time
	seq     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   map[string]map[string]memoryRecord{},
		artifacts: map[string]map[string][]byte{},
		now:       time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, category, name string, data map[string]any) error {
	// Round-trip through JSON so the stored copy shares no state with the
	// caller's map.
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	var clone map[string]any
	if err := json.Unmarshal(b, &clone); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[category] == nil {
		s.records[category] = map[string]memoryRecord{}
	}
	s.seq++
	s.records[category][name] = memoryRecord{data: clone, modTime: s.now(), seq: s.seq}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, category, name string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[category][name]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.data, nil
}

func (s *MemoryStore) List(_ context.Context, category string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		rec Record
		seq int64
	}
	var entries []entry
	for name, rec := range s.records[category] {
		entries = append(entries, entry{
			rec: Record{Category: category, Name: name, Data: rec.data, ModTime: rec.modTime},
			seq: rec.seq,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rec)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, category string) (*Record, error) {
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

func (s *MemoryStore) WriteArtifact(_ context.Context, category, filename string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts[category] == nil {
		s.artifacts[category] = map[string][]byte{}
	}
	name := filename
	if _, taken := s.artifacts[category][name]; taken {
		name = disambiguate(filename)
	}
	s.artifacts[category][name] = append([]byte(nil), content...)
	return name, nil
}

func (s *MemoryStore) ReadArtifact(_ context.Context, category, filename string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.artifacts[category][filename]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return b, nil
}
