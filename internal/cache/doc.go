// Package cache keeps decoded, mixer-ready clips so that a sound used by
// several loads, or by several runs, is decoded once. It has an in-memory
// LRU cache (L1) and a zstd-compressed disk cache (L2).
package cache
