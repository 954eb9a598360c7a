// Package bloom provides a probabilistic set of committed document versions.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/evidex"
)

// Filter records (path, content hash) pairs. A negative Test proves a file
// version was never committed, so ingestion can skip the store lookup.
// Tool versions are not part of the key; a positive Test must be confirmed
// against the store.
type Filter struct {
	mu sync.RWMutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewFilterFromKeys creates a filter holding keys.
func NewFilterFromKeys(keys []evidex.DocumentKey, fpRate float64) *Filter {
	f := NewFilter(uint(len(keys))*2, fpRate)
	for _, k := range keys {
		f.Add(k)
	}
	return f
}

func encode(k evidex.DocumentKey) []byte {
	b := make([]byte, 0, len(k.Path)+len(k.ContentHash)+1)
	b = append(b, k.Path...)
	b = append(b, 0)
	return append(b, k.ContentHash...)
}

// Add adds a document version to the filter.
func (f *Filter) Add(k evidex.DocumentKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.Add(encode(k))
}

// Test returns true if the document version might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(k evidex.DocumentKey) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.f.Test(encode(k))
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return uint(f.f.ApproximatedSize())
}
