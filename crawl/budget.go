package crawl

// Budget counts characters of page content accepted during one crawl session.
// The total never decreases.
type Budget struct {
	limit int
	total int
}

// NewBudget returns a Budget with the given limit in characters.
// A limit of zero or less means no limit.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Exceeds reports whether adding n characters would bring the total to or
// past the limit.
func (b *Budget) Exceeds(n int) bool {
	return b.limit > 0 && b.total+n >= b.limit
}

// Add adds n characters to the running total.
func (b *Budget) Add(n int) {
	if n > 0 {
		b.total += n
	}
}

// Total returns the number of characters counted so far.
func (b *Budget) Total() int { return b.total }

// Limit returns the configured limit.
func (b *Budget) Limit() int { return b.limit }
