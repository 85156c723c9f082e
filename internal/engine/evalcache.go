package engine

// EvalCache is a small direct-mapped cache of static evaluations keyed
// by position hash. Each worker owns one; no locking.
type EvalCache struct {
	keys  []uint64
	evals []int32
	mask  uint64
}

// NewEvalCache creates a cache with the given power-of-two entry count.
func NewEvalCache(entries int) *EvalCache {
	size := 1
	for size*2 <= entries {
		size *= 2
	}
	return &EvalCache{
		keys:  make([]uint64, size),
		evals: make([]int32, size),
		mask:  uint64(size - 1),
	}
}

// Probe returns the cached evaluation for the hash, if present.
func (c *EvalCache) Probe(hash uint64) (int, bool) {
	idx := hash & c.mask
	if c.keys[idx] == hash && hash != 0 {
		return int(c.evals[idx]), true
	}
	return 0, false
}

// Store records an evaluation.
func (c *EvalCache) Store(hash uint64, eval int) {
	idx := hash & c.mask
	c.keys[idx] = hash
	c.evals[idx] = int32(eval)
}

// Clear wipes the cache.
func (c *EvalCache) Clear() {
	for i := range c.keys {
		c.keys[i] = 0
	}
}
