package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func newTestDiskCache(t *testing.T, dir string, capacity int64) *DiskCache {
	t.Helper()
	dc, err := NewDiskCache(dir, capacity, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	t.Cleanup(func() { dc.Close() })
	return dc
}

func TestDiskCache_PutGet(t *testing.T) {
	dc := newTestDiskCache(t, t.TempDir(), 1<<20)
	clip := testClip(256)

	if err := dc.Put("key", clip); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := dc.Get("key")
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if got.SampleRate != clip.SampleRate || got.Channels != clip.Channels {
		t.Errorf("format = %d Hz/%d ch, want %d Hz/%d ch", got.SampleRate, got.Channels, clip.SampleRate, clip.Channels)
	}
	if len(got.Samples) != len(clip.Samples) {
		t.Fatalf("len(Samples) = %d, want %d", len(got.Samples), len(clip.Samples))
	}
	for i := range clip.Samples {
		if got.Samples[i] != clip.Samples[i] {
			t.Fatalf("sample %d = %f, want %f", i, got.Samples[i], clip.Samples[i])
		}
	}

	// repetitive samples compress well
	if dc.Size() >= clip.Size() {
		t.Errorf("disk size %d not smaller than raw size %d", dc.Size(), clip.Size())
	}
}

func TestDiskCache_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	if err := first.Put("key", testClip(64)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	first.Close()

	second := newTestDiskCache(t, dir, 1<<20)
	if !second.Contains("key") {
		t.Fatal("entry not found after reopening")
	}
	if _, ok := second.Get("key"); !ok {
		t.Error("Get failed after reopening")
	}
}

func TestDiskCache_EvictsLeastRecentlyUsed(t *testing.T) {
	dc := newTestDiskCache(t, t.TempDir(), 1<<20)
	if err := dc.Put("measure", testClip(64)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	one := dc.Size()
	dc.Clear()

	dc.capacity = one*2 + one/2
	for i := 0; i < 2; i++ {
		if err := dc.Put(fmt.Sprintf("key%d", i), testClip(64)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	dc.Get("key0")
	if err := dc.Put("key2", testClip(64)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if dc.Contains("key1") {
		t.Error("key1 should have been evicted")
	}
	if !dc.Contains("key0") || !dc.Contains("key2") {
		t.Error("key0 and key2 should remain")
	}
}

func TestDiskCache_DropsCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	dc := newTestDiskCache(t, dir, 1<<20)
	if err := dc.Put("key", testClip(16)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	path := filepath.Join(dir, fileName("key"))
	if err := os.WriteFile(path, []byte("not zstd"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, ok := dc.Get("key"); ok {
		t.Fatal("Get returned a corrupt entry")
	}
	if dc.Contains("key") {
		t.Error("corrupt entry still indexed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("corrupt file not removed: %v", err)
	}
}

func TestDiskCache_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644)

	dc := newTestDiskCache(t, dir, 1<<20)
	if dc.Size() != 0 {
		t.Errorf("Size = %d, want 0", dc.Size())
	}
}
