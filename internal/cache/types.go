package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when a cached clip cannot be decoded
	ErrCacheCorrupted = errors.New("cache data corrupted")

	// ErrClosed is returned when writing to a closed disk cache
	ErrClosed = errors.New("cache closed")
)

// Level represents the cache tier
type Level int

const (
	// LevelNone means the clip was decoded from its source file
	LevelNone Level = iota

	// LevelL1 represents the memory cache (fastest)
	LevelL1

	// LevelL2 represents the disk cache (persistent)
	LevelL2
)

// String returns the string representation of the cache level
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "decoded"
	case LevelL1:
		return "L1-Memory"
	case LevelL2:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
}

func (s *Stats) finish(size, items int64) Stats {
	out := *s
	out.Size = size
	out.ItemCount = items
	if out.Hits+out.Misses > 0 {
		out.HitRate = float64(out.Hits) / float64(out.Hits+out.Misses)
	}
	return out
}

// Config holds configuration for a cache Manager
type Config struct {
	MemoryCapacity   int64  // Bytes of decoded samples kept in memory
	DiskCapacity     int64  // Bytes of compressed clips kept on disk
	DiskPath         string // Directory for cache files; empty disables L2
	CompressionLevel int    // Zstd compression level (1-22, default 3)
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 * 1024 * 1024,  // 64MB
		DiskCapacity:     512 * 1024 * 1024, // 512MB
		CompressionLevel: 3,
	}
}
