package memory

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreAppendsAndIsolates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := sqliteItem("first", nil, nil)
	b := sqliteItem("second", nil, nil)

	if err := s.SaveItems(ctx, "rosa", []Item{a}); err != nil {
		t.Fatalf("SaveItems: %v", err)
	}
	if err := s.SaveItems(ctx, "rosa", []Item{b}); err != nil {
		t.Fatalf("SaveItems: %v", err)
	}

	items, err := s.LoadItems(ctx, "rosa")
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(items) != 2 || items[0].Content != "first" || items[1].Content != "second" {
		t.Errorf("append order broken: %+v", items)
	}

	other, err := s.LoadItems(ctx, "marc")
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("users must not share items, got %d", len(other))
	}
}

func TestMemoryStoreReadsReturnCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.SaveItems(ctx, "rosa", []Item{sqliteItem("original", nil, nil)}); err != nil {
		t.Fatalf("SaveItems: %v", err)
	}

	first, _ := s.LoadItems(ctx, "rosa")
	first[0].Content = "mutated"

	second, _ := s.LoadItems(ctx, "rosa")
	if second[0].Content != "original" {
		t.Errorf("store state leaked through a read: %q", second[0].Content)
	}
}

func TestMemoryStoreProfileAbsentThenPresent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.LoadProfile(ctx, "rosa")
	if err != nil || p != nil {
		t.Fatalf("expected nil, nil for an unconsolidated user, got %+v, %v", p, err)
	}

	saved := Profile{UserID: "rosa", LastUpdated: time.Now()}
	if err := s.SaveProfile(ctx, saved); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	p, err = s.LoadProfile(ctx, "rosa")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p == nil || p.UserID != "rosa" {
		t.Errorf("LoadProfile = %+v", p)
	}
}
