package recordstore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	data := map[string]any{"client_name": "Jane Doe", "visits": float64(3)}
	if err := s.Put(ctx, "clients", "referral_jane_doe", data); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "clients", "referral_jane_doe")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["client_name"] != "Jane Doe" {
		t.Errorf("client_name = %v, want Jane Doe", got["client_name"])
	}
	if got["visits"] != float64(3) {
		t.Errorf("visits = %v, want 3", got["visits"])
	}
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "clients", "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemoryStore_Put_CloneIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	data := map[string]any{"status": "Completed"}
	if err := s.Put(ctx, "clients", "rec", data); err != nil {
		t.Fatalf("put: %v", err)
	}
	data["status"] = "Archived"

	got, err := s.Get(ctx, "clients", "rec")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["status"] != "Completed" {
		t.Errorf("stored record mutated through caller's map: status = %v", got["status"])
	}
}

func TestMemoryStore_List_OldestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if err := s.Put(ctx, "clients", name, map[string]any{"n": name}); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}

	records, err := s.List(ctx, "clients")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"first", "second", "third"} {
		if records[i].Name != want {
			t.Errorf("records[%d].Name = %s, want %s", i, records[i].Name, want)
		}
	}
}

func TestMemoryStore_List_EmptyCategory(t *testing.T) {
	s := NewMemoryStore()
	records, err := s.List(context.Background(), "clients")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestMemoryStore_GetLatest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "clients", "older", map[string]any{"n": "older"})
	s.Put(ctx, "clients", "newer", map[string]any{"n": "newer"})

	rec, err := s.GetLatest(ctx, "clients")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if rec.Name != "newer" {
		t.Errorf("latest = %s, want newer", rec.Name)
	}
}

func TestMemoryStore_GetLatest_Overwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "clients", "a", map[string]any{"v": "1"})
	s.Put(ctx, "clients", "b", map[string]any{"v": "2"})
	s.Put(ctx, "clients", "a", map[string]any{"v": "3"})

	rec, err := s.GetLatest(ctx, "clients")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if rec.Name != "a" {
		t.Errorf("latest = %s, want a after rewrite", rec.Name)
	}
	if rec.Data["v"] != "3" {
		t.Errorf("latest data v = %v, want 3", rec.Data["v"])
	}
}

func TestMemoryStore_GetLatest_Empty(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetLatest(context.Background(), "clients")
	if !errors.Is(err, ErrCategoryEmpty) {
		t.Errorf("expected ErrCategoryEmpty, got %v", err)
	}
}

func TestMemoryStore_Artifacts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	name, err := s.WriteArtifact(ctx, "reports", "summary.txt", []byte("report body"))
	if err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if name != "summary.txt" {
		t.Errorf("first write renamed to %s", name)
	}

	b, err := s.ReadArtifact(ctx, "reports", "summary.txt")
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(b) != "report body" {
		t.Errorf("artifact content = %q", b)
	}
}

func TestMemoryStore_WriteArtifact_Disambiguates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.WriteArtifact(ctx, "reports", "summary.txt", []byte("one"))
	if err != nil {
		t.Fatalf("write first: %v", err)
	}
	second, err := s.WriteArtifact(ctx, "reports", "summary.txt", []byte("two"))
	if err != nil {
		t.Fatalf("write second: %v", err)
	}

	if second == first {
		t.Fatalf("second write reused name %s", second)
	}
	if !strings.HasPrefix(second, "summary-") || !strings.HasSuffix(second, ".txt") {
		t.Errorf("disambiguated name = %s, want summary-<suffix>.txt", second)
	}

	b, err := s.ReadArtifact(ctx, "reports", first)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if string(b) != "one" {
		t.Errorf("first artifact overwritten: %q", b)
	}
}

func TestMemoryStore_ReadArtifact_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.ReadArtifact(context.Background(), "reports", "missing.txt")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
