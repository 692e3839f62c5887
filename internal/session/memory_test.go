package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestSession() *Session {
	return &Session{
		ClientID:   "client",
		DeviceCode: "device",
		Interval:   5,
		ExpiresAt:  time.Now().Add(15 * time.Minute),
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := newTestSession()
	id, err := store.Create(ctx, sess)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty id")
	}
	if sess.ID != id {
		t.Errorf("session ID field = %q, want %q", sess.ID, id)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ClientID != "client" || got.DeviceCode != "device" {
		t.Errorf("got %+v", got)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent id is not an error.
	if err := store.Delete(ctx, id); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, newTestSession())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	first.DeviceCode = "mutated"

	second, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if second.DeviceCode != "device" {
		t.Errorf("stored session mutated through a returned copy")
	}
}

func TestMemoryStoreUniqueIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id, err := store.Create(ctx, newTestSession())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d creations", id, i+1)
		}
		seen[id] = true
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id, err := store.Create(ctx, newTestSession())
				if err != nil {
					errs <- fmt.Errorf("create: %w", err)
					return
				}
				if _, err := store.Get(ctx, id); err != nil {
					errs <- fmt.Errorf("get: %w", err)
					return
				}
				// Double delete on the same key must be safe.
				if err := store.Delete(ctx, id); err != nil {
					errs <- fmt.Errorf("delete: %w", err)
					return
				}
				if err := store.Delete(ctx, id); err != nil {
					errs <- fmt.Errorf("redelete: %w", err)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
