package store

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T, dir string) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return c
}

func TestCacheDocumentRoundTrip(t *testing.T) {
	c := openTestCache(t, t.TempDir())
	defer c.Close()

	if _, ok := c.GetDocument(); ok {
		t.Fatal("fresh cache should be empty")
	}

	blob := []byte(`{"version":3,"brands":[]}`)
	if err := c.PutDocument(blob); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.GetDocument()
	if !ok || !bytes.Equal(got, blob) {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	c := openTestCache(t, dir)
	if err := c.PutDocument([]byte(`{"version":3}`)); err != nil {
		t.Fatal(err)
	}
	if err := c.PutDeviceId("LOC-ABC123"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c = openTestCache(t, dir)
	defer c.Close()

	if _, ok := c.GetDocument(); !ok {
		t.Error("document lost across reopen")
	}
	if got := c.DeviceId(); got != "LOC-ABC123" {
		t.Errorf("device id = %q", got)
	}
}

func TestCacheDeviceIdOverride(t *testing.T) {
	c := openTestCache(t, t.TempDir())
	defer c.Close()

	if got := c.DeviceId(); got != "" {
		t.Fatalf("fresh cache device id = %q", got)
	}
	if err := c.PutDeviceId("LOC-A"); err != nil {
		t.Fatal(err)
	}
	if err := c.PutDeviceId("LOC-B"); err != nil {
		t.Fatal(err)
	}
	if got := c.DeviceId(); got != "LOC-B" {
		t.Errorf("device id = %q, want override to win", got)
	}
}
