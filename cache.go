// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"log/slog"

	"github.com/z5labs/container/internal/logging"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultHasCacheCapacity is the number of origins remembered by
// a [Nested] container unless configured otherwise.
const DefaultHasCacheCapacity = 100

const localSlot = -1

// originCache remembers which layer of a Nested container last
// resolved an identifier. Only positive results are remembered.
type originCache struct {
	log      *slog.Logger
	capacity int
	lru      *simplelru.LRU[string, int]
}

func newOriginCache(log *slog.Logger) *originCache {
	return &originCache{
		log:      log,
		capacity: DefaultHasCacheCapacity,
	}
}

func (c *originCache) enabled() bool {
	return c.lru != nil
}

// configure enables or disables the cache. Disabling it drops every
// remembered origin. A capacity less than one keeps the current capacity.
func (c *originCache) configure(enabled bool, capacity int) {
	if capacity > 0 {
		c.capacity = capacity
	}
	if !enabled {
		c.lru = nil
		return
	}
	if c.lru != nil {
		c.lru.Resize(c.capacity)
		return
	}

	// NewLRU only fails for a non-positive size which is guarded above.
	c.lru, _ = simplelru.NewLRU[string, int](c.capacity, c.onEvict)
}

func (c *originCache) onEvict(id string, _ int) {
	c.log.Debug("evicted cached origin", logging.ID(id))
}

// record stores slot as the most recent origin of id, evicting the
// least recently recorded origins beyond capacity.
func (c *originCache) record(id string, slot int) {
	if c.lru == nil {
		return
	}
	c.lru.Add(id, slot)
}

// lookup returns the origin of id without refreshing its recency.
func (c *originCache) lookup(id string) (int, bool) {
	if c.lru == nil {
		return 0, false
	}
	return c.lru.Peek(id)
}

func (c *originCache) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
