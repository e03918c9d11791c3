package statestream

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// TemplateCache caches pipeline templates indexed by descriptor hash.
//
// Template creation bakes static encodings and is typically invoked from a
// pipeline-creation path that sees many identical descriptors; the cache
// avoids redundant baking.
//
// Thread Safety:
// TemplateCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes. Cached
// templates are immutable, so handing the same *PipelineTemplate to
// multiple recording contexts is safe.
//
// The cache tracks hit/miss statistics for performance monitoring.
type TemplateCache struct {
	// mu protects the template map.
	mu sync.RWMutex

	// templates stores baked templates indexed by descriptor hash.
	templates map[uint64]*PipelineTemplate

	// hits counts cache hits (atomic for lock-free reads).
	hits uint64

	// misses counts cache misses (atomic for lock-free reads).
	misses uint64
}

// NewTemplateCache creates an empty template cache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		templates: make(map[uint64]*PipelineTemplate),
	}
}

// GetOrCreate returns a cached template or bakes a new one.
//
// This method implements the "get or create" pattern with double-check
// locking:
//  1. Fast path: RLock, check cache, return if found
//  2. Slow path: Lock, double-check, bake if needed
func (c *TemplateCache) GetOrCreate(desc *TemplateDescriptor) (*PipelineTemplate, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}

	descHash := HashTemplateDescriptor(desc)

	// Fast path: read lock
	c.mu.RLock()
	if t, ok := c.templates[descHash]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return t, nil
	}
	c.mu.RUnlock()

	// Slow path: write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.templates[descHash]; ok {
		atomic.AddUint64(&c.hits, 1)
		return t, nil
	}

	atomic.AddUint64(&c.misses, 1)
	t, err := NewPipelineTemplate(desc)
	if err != nil {
		return nil, err
	}
	c.templates[descHash] = t
	return t, nil
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Stats returns the cache hit and miss counts.
func (c *TemplateCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Clear removes every cached template.
func (c *TemplateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = make(map[uint64]*PipelineTemplate)
}

// HashTemplateDescriptor computes a stable FNV-1a hash of a descriptor.
// Two descriptors with the same hash are treated as the same pipeline
// template.
func HashTemplateDescriptor(desc *TemplateDescriptor) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	writeU64(uint64(desc.Stages))
	for _, hash := range desc.ShaderHashes {
		writeU64(hash)
	}
	if desc.UsesStreamOut {
		writeU64(1)
	} else {
		writeU64(0)
	}
	writeU64(uint64(desc.TessDomain))
	writeU64(uint64(len(desc.ColorFormats)))
	for _, f := range desc.ColorFormats {
		writeU64(uint64(f))
	}
	writeU64(uint64(desc.DepthFormat))

	return h.Sum64()
}
