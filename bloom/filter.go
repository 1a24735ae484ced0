// Package bloom provides the crawl session's seen-URL set using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a set of URLs that never forgets a member.
// False positives are possible; false negatives are not, so a URL that was
// added is always reported as seen.
type Filter struct {
	f *bloom.BloomFilter
	n uint
}

// NewFilter creates a new Bloom filter sized for n expected URLs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd adds the URL and reports whether it might have been present before.
func (f *Filter) TestAndAdd(url string) bool {
	present := f.f.TestAndAddString(url)
	if !present {
		f.n++
	}
	return present
}

// Count returns the number of URLs TestAndAdd accepted as new.
func (f *Filter) Count() uint {
	return f.n
}
