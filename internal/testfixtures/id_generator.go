package testfixtures

import "sync"

// IDGenerator produces sequential row identifiers for in-memory stores.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewIDGenerator constructs a generator whose first identifier is start+1.
func NewIDGenerator(start int64) *IDGenerator {
	return &IDGenerator{last: start}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return g.last
}

// Observe moves the sequence past id so later identifiers never collide with it.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	if id > g.last {
		g.last = id
	}
	g.mu.Unlock()
}
