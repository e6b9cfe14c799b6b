package library

import "maps"

// cowMap is a map that can be handed out to readers without copying.
//
// After share, the next write clones the map first, so shared maps are never mutated.
type cowMap[K comparable, V any] struct {
	m      map[K]V
	shared bool
}

func newCowMap[K comparable, V any]() cowMap[K, V] {
	return cowMap[K, V]{m: make(map[K]V)}
}

// read returns the current map for lookups. Callers must not mutate it.
func (c *cowMap[K, V]) read() map[K]V { return c.m }

// write returns a map that is safe to mutate.
func (c *cowMap[K, V]) write() map[K]V {
	if c.shared {
		c.m = maps.Clone(c.m)
		c.shared = false
	}
	return c.m
}

// share marks the current map as visible to readers and returns it.
func (c *cowMap[K, V]) share() map[K]V {
	c.shared = true
	return c.m
}

// reset swaps in an empty map. Readers holding the old one are unaffected.
func (c *cowMap[K, V]) reset() {
	c.m = make(map[K]V)
	c.shared = false
}
