package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := BuildCacheKey("openai", "gpt-4", "system", "The patient was well.")
	value := `{"category":"TERMINOLOGY","span":[4,11]}`

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss before put")
	}
	if err := c.Put(key, value); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if got != value {
		t.Errorf("Got = %q, want %q", got, value)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 1)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := c.Put("k", "data"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	// Backdate the entry instead of sleeping.
	path := c.entryPath("k")
	data := []byte(`{"key":"x","response":"data","createdAt":"2000-01-01T00:00:00Z","ttl":1}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Expired != 1 {
		t.Errorf("Expired = %d, want 1", stats.Expired)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss for expired entry")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expired entry should be removed on Get")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Expected disabled cache")
	}
	if err := c.Put("k", "v"); err != nil {
		t.Errorf("Put on disabled cache should be a no-op, got %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Disabled cache should always miss")
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear = (%d, %v), want (0, nil)", n, err)
	}
}

func TestCache_ClearAndStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Put(k, "value-"+k); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	// Unrelated files are left alone.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 3 || stats.TotalBytes == 0 || stats.Expired != 0 {
		t.Errorf("stats = %+v", stats)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("Clear should not remove non-entry files")
	}
}

func TestHashKey(t *testing.T) {
	a := HashKey("x")
	if len(a) != 64 {
		t.Errorf("len(HashKey) = %d, want 64", len(a))
	}
	if a != HashKey("x") {
		t.Error("HashKey should be deterministic")
	}
	if a == HashKey("y") {
		t.Error("Different inputs should hash differently")
	}
}

func TestBuildCacheKey(t *testing.T) {
	base := BuildCacheKey("openai", "gpt-4", "sys", "user")
	if base == BuildCacheKey("anthropic", "gpt-4", "sys", "user") {
		t.Error("Provider should affect key")
	}
	if base == BuildCacheKey("openai", "gpt-4o", "sys", "user") {
		t.Error("Model should affect key")
	}
	if base == BuildCacheKey("openai", "gpt-4", "sysuser") {
		t.Error("Prompt boundaries should affect key")
	}
}

func TestDefaultCacheDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "redline") {
		t.Errorf("dir = %q", dir)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := &Cache{ttlSeconds: 60}
	if c.expired(Entry{CreatedAt: time.Now()}) {
		t.Error("Fresh entry should not be expired")
	}
	if !c.expired(Entry{CreatedAt: time.Now().Add(-time.Hour)}) {
		t.Error("Old entry should be expired")
	}
}
