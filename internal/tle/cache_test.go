package tle

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, 5)

	ts := time.Unix(1700000000, 0)
	if err := c.Write([]byte("payload"), ts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, got, err := c.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q, want payload", data)
	}
	if !got.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got, ts)
	}
}

func TestCacheLoadLatestPicksNewest(t *testing.T) {
	c := NewCache(t.TempDir(), 5)
	base := time.Unix(1700000000, 0)

	c.Write([]byte("old"), base)
	c.Write([]byte("new"), base.Add(time.Hour))
	c.Write([]byte("middle"), base.Add(time.Minute))

	data, _, err := c.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("loaded %q, want the newest file", data)
	}
}

func TestCachePrune(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, 2)
	base := time.Unix(1700000000, 0)

	for i := 0; i < 5; i++ {
		if err := c.Write([]byte("x"), base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("cache holds %d files after prune, want 2", len(entries))
	}
}

func TestCacheEmptyDir(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "missing"), 5)
	if _, _, err := c.LoadLatest(); err == nil {
		t.Error("expected error for empty cache")
	}
}

func TestCacheIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "tle_garbage.txt"), []byte("x"), 0644)

	c := NewCache(dir, 5)
	if _, _, err := c.LoadLatest(); err == nil {
		t.Error("expected error when only foreign files exist")
	}
}
