package query

import "sync/atomic"

// Generation tags fetches so only the response to the latest one is applied.
type Generation struct {
	current atomic.Uint64
}

// Next starts a new fetch and returns its tag.
func (g *Generation) Next() uint64 {
	return g.current.Add(1)
}

// Current returns the tag of the latest fetch.
func (g *Generation) Current() uint64 {
	return g.current.Load()
}

// IsCurrent reports whether tag belongs to the latest fetch.
func (g *Generation) IsCurrent(tag uint64) bool {
	return tag == g.current.Load()
}
