package datagen

import "sync"

// DedupCache is a bounded set of position hashes with FIFO eviction.
// Accept returns false for a hash seen within the window.
type DedupCache struct {
	mu       sync.Mutex
	seen     map[uint64]struct{}
	order    []uint64
	head     int
	capacity int
}

// NewDedupCache creates a cache holding up to capacity hashes. A zero
// capacity accepts everything.
func NewDedupCache(capacity int) *DedupCache {
	return &DedupCache{
		seen:     make(map[uint64]struct{}, capacity),
		order:    make([]uint64, 0, capacity),
		capacity: capacity,
	}
}

// Accept inserts the hash, evicting the oldest entry when full. Returns
// false on a duplicate.
func (d *DedupCache) Accept(key uint64) bool {
	if d.capacity == 0 {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)

	if len(d.order)-d.head > d.capacity {
		oldest := d.order[d.head]
		delete(d.seen, oldest)
		d.head++
		// Compact the ring occasionally so it does not grow unbounded.
		if d.head > d.capacity {
			d.order = append(d.order[:0], d.order[d.head:]...)
			d.head = 0
		}
	}
	return true
}

// Len returns the number of hashes currently in the window.
func (d *DedupCache) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
