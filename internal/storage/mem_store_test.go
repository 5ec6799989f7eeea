package storage

import (
	"context"
	"testing"
)

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, KeyAccount); err != nil || ok {
		t.Errorf("missing key: ok=%v err=%v, want absent with no error", ok, err)
	}

	if err := store.Set(ctx, KeyAccount, `{"id":"parent1"}`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, ok, err := store.Get(ctx, KeyAccount)
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if value != `{"id":"parent1"}` {
		t.Errorf("value = %s", value)
	}

	if err := store.Remove(ctx, KeyAccount); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, KeyAccount); ok {
		t.Error("key should be gone after remove")
	}

	// Removing an absent key is not an error
	if err := store.Remove(ctx, KeyAccount); err != nil {
		t.Errorf("remove of absent key failed: %v", err)
	}
}
