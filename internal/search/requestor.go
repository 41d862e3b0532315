package search

import (
	"sync"

	"github.com/standardbeagle/dsrefs/internal/types"
)

// Requestor is the sink matches are reported to, in discovery order.
type Requestor interface {
	ReportMatch(m types.Match)
}

// RequestorFunc adapts a function to a Requestor.
type RequestorFunc func(m types.Match)

// ReportMatch implements Requestor.
func (f RequestorFunc) ReportMatch(m types.Match) { f(m) }

// Collector keeps every reported match.
type Collector struct {
	mu      sync.Mutex
	matches []types.Match
}

// ReportMatch implements Requestor.
func (c *Collector) ReportMatch(m types.Match) {
	c.mu.Lock()
	c.matches = append(c.matches, m)
	c.mu.Unlock()
}

// Matches returns a copy of the collected matches.
func (c *Collector) Matches() []types.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Match(nil), c.matches...)
}

// Len returns the number of collected matches.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.matches)
}
