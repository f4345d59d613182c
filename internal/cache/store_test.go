package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(t)
	key := Key("https://conference.example.com/data/sessions.json")

	payload := []byte(`{"sessions":[]}`)
	if err := store.Put(context.Background(), key, payload); err != nil {
		t.Fatalf("put error: %v", err)
	}

	body, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("cached payload mismatch: %s", string(body))
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), Key("https://example.com/missing.json"))
	if err == nil || err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreCreatesDirOnDemand(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(filepath.Join(base, "deep", "cache"))
	if err != nil {
		t.Fatalf("new store error: %v", err)
	}

	// 构造阶段不应创建目录
	if _, err := os.Stat(filepath.Join(base, "deep")); !os.IsNotExist(err) {
		t.Fatalf("expected no directory before first Put, got %v", err)
	}

	if err := store.Put(context.Background(), Key("u"), []byte("x")); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "deep", "cache", dataCacheDir)); err != nil {
		t.Fatalf("expected cache dir after Put: %v", err)
	}
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := store.Put(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestStoreListEmptyWhenDirMissing(t *testing.T) {
	store := newTestStore(t)
	keys, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty list, got %v", keys)
	}
}

func TestStoreCleanupKeepsOnlyKeepSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	keyA := Key("https://example.com/a.json")
	keyB := Key("https://example.com/b.json")
	keyC := Key("https://example.com/c.json")
	for _, key := range []string{keyA, keyB, keyC} {
		if err := store.Put(ctx, key, []byte("data-"+key)); err != nil {
			t.Fatalf("put error: %v", err)
		}
	}

	keep := map[string]struct{}{keyA: {}, keyC: {}}
	kept, deleted, err := store.Cleanup(ctx, keep)
	if err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if kept != 2 || deleted != 1 {
		t.Fatalf("expected 2 kept / 1 deleted, got %d / %d", kept, deleted)
	}

	if _, err := store.Get(ctx, keyB); err != ErrNotFound {
		t.Fatalf("expected keyB removed, got %v", err)
	}
	if _, err := store.Get(ctx, keyA); err != nil {
		t.Fatalf("expected keyA kept: %v", err)
	}
}

func TestStoreCleanupNoopWithoutDir(t *testing.T) {
	store := newTestStore(t)
	kept, deleted, err := store.Cleanup(context.Background(), map[string]struct{}{"x": {}})
	if err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if kept != 0 || deleted != 0 {
		t.Fatalf("expected no-op cleanup, got %d / %d", kept, deleted)
	}
}

// newTestStore returns a Store backed by a temporary directory.
func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}
