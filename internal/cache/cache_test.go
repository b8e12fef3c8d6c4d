package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"features", "bow"}, "features_bow"},
		{[]string{"model", "nb", "tfidf"}, "model_nb_tfidf"},
		{[]string{"Model", "a/b c"}, "model_a_b_c"},
	}
	for _, tt := range tests {
		if got := Key(tt.parts...); got != tt.want {
			t.Errorf("Key(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func testCacheContract(t *testing.T, c Cache) {
	t.Helper()

	if _, err := c.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := c.Set("k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("Get = %q, want v1", got)
	}

	// Overwrite on rerun
	if err := c.Set("k", []byte("v2"), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = c.Get("k")
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("Get after overwrite = %q, want v2", got)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	_ = c.Set("a", []byte("1"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	testCacheContract(t, NewMemoryCache(0, 0))
}

func TestMemoryCache_Len(t *testing.T) {
	c := NewMemoryCache(0, 0)
	for _, k := range []string{"features_bow", "features_tfidf"} {
		if err := c.Set(k, []byte("x"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if err := c.Delete("features_bow"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len after Delete = %d, want 1", c.Len())
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(0, 0)
	if err := c.Set("k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired entry to be missing, got %v", err)
	}
}

func TestDiskCache(t *testing.T) {
	testCacheContract(t, NewDiskCache(filepath.Join(t.TempDir(), "store"), 0))
}

func TestDiskCache_FileLayout(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, 0)
	if err := c.Set("features_bow", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "features_bow.bin")); err != nil {
		t.Errorf("expected artifact file: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), 0)
	if err := c.Set("k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired entry to be missing, got %v", err)
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, 0)
	if err := os.WriteFile(filepath.Join(dir, "bad.bin"), []byte("not gob"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := c.Get("bad")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("corrupt file must not be reported as missing")
	}
}

func TestLayeredCache(t *testing.T) {
	testCacheContract(t, NewLayeredCache(0, t.TempDir(), 0))
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(0, dir, 0)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A fresh process sees only the disk layer
	second := NewLayeredCache(0, dir, 0)
	got, err := second.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}
	if _, err := second.memory.Get("k"); err != nil {
		t.Errorf("expected value promoted to memory, got %v", err)
	}
}
