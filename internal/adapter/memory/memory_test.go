package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"armonia/internal/domain"
)

func TestKVStore(t *testing.T) {
	db := New()
	ctx := context.Background()

	if _, err := db.Get(ctx, "moods:u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}

	if err := db.Set(ctx, "moods:u1", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := db.Get(ctx, "moods:u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != `[{"id":"a"}]` {
		t.Errorf("unexpected value %q", v)
	}

	if err := db.Set(ctx, "moods:u1", "[]"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _ := db.Get(ctx, "moods:u1"); v != "[]" {
		t.Errorf("expected overwrite, got %q", v)
	}

	// Other keys are independent
	if _, err := db.Get(ctx, "moods:u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected other user's key to be missing, got %v", err)
	}

	if err := db.Delete(ctx, "moods:u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get(ctx, "moods:u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.Delete(ctx, "moods:u1"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	db := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Set: expected context.Canceled, got %v", err)
	}
	if _, err := db.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get: expected context.Canceled, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	db := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.Set(ctx, "shared", "v")
			_, _ = db.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if v, err := db.Get(ctx, "shared"); err != nil || v != "v" {
		t.Errorf("unexpected state %q, %v", v, err)
	}
}
