package store

import (
	"context"
	"testing"
)

func TestKVStore(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
	}

	if err := kv.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok %v, err %v", ok, err)
	}
	if string(v) != "two" {
		t.Errorf("Get(k) = %q, want %q", v, "two")
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Errorf("key still present after Delete")
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key returned %v", err)
	}

	if err := kv.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
