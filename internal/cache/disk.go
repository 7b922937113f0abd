package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/tickmix/internal/decode"
)

const clipExt = ".clip"

// DiskCache implements an L2 disk cache of zstd-compressed clips.
// Its index is rebuilt from the cache directory on open, so entries
// written by an earlier run are found again.
type DiskCache struct {
	basePath string
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	// keyed by file name
	index map[string]*diskEntry

	mu     sync.Mutex
	stats  Stats
	closed bool
}

type diskEntry struct {
	path       string
	size       int64 // compressed size on disk
	lastAccess time.Time
}

// NewDiskCache creates a disk cache rooted at basePath with the given
// capacity in bytes and zstd compression level.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if compressionLevel <= 0 {
		compressionLevel = 3
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		encoder:  encoder,
		decoder:  decoder,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}
	if err := dc.scan(); err != nil {
		dc.Close()
		return nil, fmt.Errorf("failed to scan cache directory: %w", err)
	}
	return dc, nil
}

// Get reads and decompresses the clip stored under key. Entries that fail
// to decode are removed.
func (dc *DiskCache) Get(key string) (*decode.Clip, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[fileName(key)]
	if !ok || dc.closed {
		dc.stats.Misses++
		return nil, false
	}

	compressed, err := os.ReadFile(entry.path)
	if err != nil {
		dc.remove(fileName(key))
		dc.stats.Misses++
		return nil, false
	}
	clip, err := dc.unpack(compressed)
	if err != nil {
		logger.Warn("Dropping corrupted cache entry", "path", entry.path, "error", err)
		dc.remove(fileName(key))
		dc.stats.Misses++
		return nil, false
	}

	now := time.Now()
	entry.lastAccess = now
	// mtime doubles as the access time for the next run's scan
	_ = os.Chtimes(entry.path, now, now)

	dc.stats.Hits++
	dc.stats.LastAccess = now
	return clip, true
}

// Put compresses clip and writes it under key, evicting the least recently
// used files until it fits.
func (dc *DiskCache) Put(key string, clip *decode.Clip) error {
	raw, err := clip.MarshalBinary()
	if err != nil {
		return err
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.closed {
		return ErrClosed
	}

	compressed := dc.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
	size := int64(len(compressed))
	if size > dc.capacity {
		return ErrItemTooLarge
	}

	name := fileName(key)
	if _, ok := dc.index[name]; ok {
		dc.remove(name)
	}
	for dc.size+size > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := filepath.Join(dc.basePath, name)
	if err := writeFile(path, compressed); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	dc.index[name] = &diskEntry{path: path, size: size, lastAccess: time.Now()}
	dc.size += size
	return nil
}

// Delete removes key from the cache.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.remove(fileName(key))
}

// Clear removes every cached file.
func (dc *DiskCache) Clear() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	for name := range dc.index {
		dc.remove(name)
	}
}

// Contains checks if a key exists without touching its access time.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	_, ok := dc.index[fileName(key)]
	return ok
}

// Size returns the bytes used on disk.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.stats.finish(dc.size, int64(len(dc.index)))
}

// Close releases the compressor and decompressor. Cached files stay on disk.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.closed {
		return nil
	}
	dc.closed = true
	dc.encoder.Close()
	dc.decoder.Close()
	return nil
}

func (dc *DiskCache) unpack(compressed []byte) (*decode.Clip, error) {
	raw, err := dc.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	clip := &decode.Clip{}
	if err := clip.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	return clip, nil
}

func (dc *DiskCache) scan() error {
	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, clipExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		dc.index[name] = &diskEntry{
			path:       filepath.Join(dc.basePath, name),
			size:       info.Size(),
			lastAccess: info.ModTime(),
		}
		dc.size += info.Size()
	}
	for dc.size > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}
	return nil
}

// remove must be called with the lock held.
func (dc *DiskCache) remove(name string) {
	entry, ok := dc.index[name]
	if !ok {
		return
	}
	os.Remove(entry.path)
	dc.size -= entry.size
	delete(dc.index, name)
}

func (dc *DiskCache) evictOldest() {
	var oldest string
	var oldestTime time.Time
	for name, entry := range dc.index {
		if oldest == "" || entry.lastAccess.Before(oldestTime) {
			oldest = name
			oldestTime = entry.lastAccess
		}
	}
	if oldest != "" {
		dc.remove(oldest)
		dc.stats.Evictions++
	}
}

func fileName(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16]) + clipExt
}

// writeFile writes to a temp file first, then renames it into place.
func writeFile(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, path)
}
