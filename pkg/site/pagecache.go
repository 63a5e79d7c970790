package site

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// PageCache caches page file contents behind memory-mapped reads with LRU
// eviction, so repeated audits of a large site don't re-read unchanged
// pages. Files that fail to mmap (empty files, exotic filesystems) fall back
// to os.ReadFile transparently.
//
// Thread-safe: parallel page workers share one cache. Evicted and
// invalidated mappings are retired, not unmapped, so byte slices returned by
// Get stay valid until Close — a worker mid-copy can never fault on a page
// another goroutine just invalidated.
type PageCache struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, *mappedPage]
	logger *slog.Logger

	// retired holds pages dropped from the cache whose mappings are still
	// referenced by outstanding Get slices. Released in Close.
	retired []*mappedPage

	// Metrics, guarded by mu.
	hits, misses, mmapFailures int64
}

// mappedPage is one cached page. Either data (fallback read) or mapped+file
// (mmap) is set.
type mappedPage struct {
	data   []byte
	mapped mmap.MMap
	file   *os.File
}

func (mp *mappedPage) bytes() []byte {
	if mp.mapped != nil {
		return mp.mapped
	}
	return mp.data
}

func (mp *mappedPage) release(logger *slog.Logger) {
	if mp.mapped != nil {
		if err := mp.mapped.Unmap(); err != nil {
			logger.Warn("failed to unmap page", "error", err)
		}
	}
	if mp.file != nil {
		_ = mp.file.Close()
	}
}

// DefaultCachePages bounds the cache; marketing sites rarely exceed a few
// hundred pages.
const DefaultCachePages = 1024

// NewPageCache creates a cache holding up to maxPages entries (0 uses the
// default).
func NewPageCache(maxPages int, logger *slog.Logger) (*PageCache, error) {
	if maxPages <= 0 {
		maxPages = DefaultCachePages
	}
	if logger == nil {
		logger = slog.Default()
	}
	pc := &PageCache{logger: logger}
	// The evict callback runs while pc.mu is held (Add, Remove and Purge are
	// only called under it), so appending to retired needs no extra lock.
	cache, err := lru.NewWithEvict(maxPages, func(key string, value *mappedPage) {
		pc.retired = append(pc.retired, value)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}
	pc.cache = cache
	return pc, nil
}

// Get returns the page bytes, loading and mapping on first access. The
// returned slice stays valid until Close; invalidation retires the mapping
// without unmapping it.
func (pc *PageCache) Get(absPath string) ([]byte, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if mp, ok := pc.cache.Get(absPath); ok {
		pc.hits++
		return mp.bytes(), nil
	}
	pc.misses++

	mp, err := pc.load(absPath)
	if err != nil {
		return nil, err
	}
	pc.cache.Add(absPath, mp)
	return mp.bytes(), nil
}

// load maps the file, falling back to a plain read when mmap fails.
func (pc *PageCache) load(absPath string) (*mappedPage, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.Size() == 0 {
		_ = f.Close()
		return &mappedPage{data: []byte{}}, nil
	}

	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		pc.mmapFailures++
		pc.logger.Debug("mmap failed, falling back to read", "path", absPath, "error", err)
		_ = f.Close()
		data, rerr := os.ReadFile(absPath)
		if rerr != nil {
			return nil, rerr
		}
		return &mappedPage{data: data}, nil
	}
	return &mappedPage{mapped: mapped, file: f}, nil
}

// Invalidate drops a page after it is rewritten or changes on disk. The old
// mapping is retired, not released, in case a reader still holds its bytes.
func (pc *PageCache) Invalidate(absPath string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache.Remove(absPath)
}

// Stats returns cumulative hit/miss/fallback counts.
func (pc *PageCache) Stats() (hits, misses, mmapFailures int64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hits, pc.misses, pc.mmapFailures
}

// Close releases every mapped page, cached and retired. Callers must not
// use slices returned by Get after Close.
func (pc *PageCache) Close() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache.Purge()
	for _, mp := range pc.retired {
		mp.release(pc.logger)
	}
	pc.retired = nil
}
