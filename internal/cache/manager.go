package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/tickmix/internal/decode"
)

var logger = log.WithPrefix("cache")

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// Manager coordinates the memory and disk levels and decodes on a full
// miss. It is safe for concurrent use by loader workers.
type Manager struct {
	l1Memory *MemoryCache
	l2Disk   *DiskCache // nil when disk caching is disabled

	config Config

	mu     sync.Mutex
	stats  ManagerStats
	latest map[string]string // source identity -> newest key
}

// ManagerStats summarises lookups across both levels.
type ManagerStats struct {
	L1Hits     int64
	L2Hits     int64
	Decodes    int64
	Promotions int64
	L1         Stats
	L2         Stats
}

// NewManager creates a manager. An empty DiskPath disables the disk level.
func NewManager(config Config) (*Manager, error) {
	if config.MemoryCapacity <= 0 {
		config.MemoryCapacity = DefaultConfig().MemoryCapacity
	}

	m := &Manager{
		l1Memory: NewMemoryCache(config.MemoryCapacity),
		config:   config,
		latest:   make(map[string]string),
	}

	if config.DiskPath != "" && config.DiskCapacity > 0 {
		l2Disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		m.l2Disk = l2Disk
	}

	return m, nil
}

// Key identifies a decoded clip by its source file's identity and the
// sample rate it was prepared for. A file that changes on disk gets a new key.
func Key(path string, rate int) (string, error) {
	_, key, err := sourceKey(path, rate)
	return key, err
}

// sourceKey returns the file and rate a key belongs to along with the key.
func sourceKey(path string, rate int) (source, key string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}
	source = fmt.Sprintf("%s|%d", abs, rate)
	return source, fmt.Sprintf("%s|%d|%d|%d", abs, info.ModTime().UnixNano(), info.Size(), rate), nil
}

// Load returns path decoded to interleaved stereo at rate. It checks L1,
// then L2 (promoting hits to L1), and finally decodes the file and stores
// the result in both levels. Clips decoded from an older version of the
// file are dropped.
func (m *Manager) Load(path string, rate int) (*decode.Clip, Level, error) {
	source, key, err := sourceKey(path, rate)
	if err != nil {
		return nil, LevelNone, fmt.Errorf("failed to open %s: %w", path, err)
	}
	m.dropStale(source, key)

	if clip, level, ok := m.Get(key); ok {
		logger.Debug("Cache hit", "path", path, "level", level, "size", humanize.IBytes(uint64(clip.Size())))
		return clip, level, nil
	}

	start := time.Now()
	clip, err := decode.Open(path)
	if err != nil {
		return nil, LevelNone, err
	}
	clip = decode.Prepare(clip, rate)

	m.mu.Lock()
	m.stats.Decodes++
	m.mu.Unlock()

	logger.Debug("Decoded clip",
		"path", path,
		"duration", clip.Duration(),
		"size", humanize.IBytes(uint64(clip.Size())),
		"took", time.Since(start))

	m.Put(key, clip)
	return clip, LevelNone, nil
}

// Get looks key up in L1, then L2.
func (m *Manager) Get(key string) (*decode.Clip, Level, bool) {
	if clip, ok := m.l1Memory.Get(key); ok {
		m.mu.Lock()
		m.stats.L1Hits++
		m.mu.Unlock()
		return clip, LevelL1, true
	}

	if m.l2Disk == nil {
		return nil, LevelNone, false
	}
	if clip, ok := m.l2Disk.Get(key); ok {
		m.mu.Lock()
		m.stats.L2Hits++
		m.mu.Unlock()
		m.promoteToL1(key, clip)
		return clip, LevelL2, true
	}

	return nil, LevelNone, false
}

// Put stores clip in both levels. A clip too large for a level is skipped
// there; disk write failures are logged.
func (m *Manager) Put(key string, clip *decode.Clip) {
	if err := m.l1Memory.Put(key, clip); err != nil {
		logger.Debug("Clip not kept in memory", "size", humanize.IBytes(uint64(clip.Size())), "error", err)
	}
	if m.l2Disk == nil {
		return
	}
	if err := m.l2Disk.Put(key, clip); err != nil {
		logger.Warn("Failed to write clip to disk cache", "error", err)
	}
}

// Delete removes key from both levels.
func (m *Manager) Delete(key string) {
	m.l1Memory.Delete(key)
	if m.l2Disk != nil {
		m.l2Disk.Delete(key)
	}
}

// dropStale deletes the previous key of source when the file has changed
// since it was last loaded.
func (m *Manager) dropStale(source, key string) {
	m.mu.Lock()
	prev, ok := m.latest[source]
	m.latest[source] = key
	m.mu.Unlock()

	if ok && prev != key {
		m.Delete(prev)
		logger.Debug("Dropped stale clip", "source", source)
	}
}

// Clear empties both levels.
func (m *Manager) Clear() {
	m.l1Memory.Clear()
	if m.l2Disk != nil {
		m.l2Disk.Clear()
	}
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	stats := m.stats
	m.mu.Unlock()

	stats.L1 = m.l1Memory.Stats()
	if m.l2Disk != nil {
		stats.L2 = m.l2Disk.Stats()
	}
	return stats
}

// Close releases the disk level. Cached files persist for the next run.
func (m *Manager) Close() error {
	if m.l2Disk == nil {
		return nil
	}
	if err := m.l2Disk.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}

// promoteToL1 is best-effort.
func (m *Manager) promoteToL1(key string, clip *decode.Clip) {
	if err := m.l1Memory.Put(key, clip); err == nil {
		m.mu.Lock()
		m.stats.Promotions++
		m.mu.Unlock()
	}
}
