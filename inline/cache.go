/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package inline

import (
	"container/list"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the signature cache.
const DefaultCacheSize = 1024

// Cache is the bounded signature -> entry point mapping with LRU eviction.
// The mutex only guards the map and the recency list; compiles run outside
// it, serialized per signature through the singleflight group so concurrent
// first use compiles exactly once while distinct signatures never wait on
// each other.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	flight   singleflight.Group
}

type cacheEntry struct {
	key    string
	handle EntryPoint
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// lookup refreshes recency on hit.
func (c *Cache) lookup(key string) (EntryPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).handle, true
}

// store inserts as most recently used and evicts the least recently used
// entry when the capacity would be exceeded. Eviction only drops the lookup
// entry; the loaded code stays resident, there is no unload.
func (c *Cache) store(key string, handle EntryPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).handle = handle
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, handle: handle})
	for c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.entries, last.Value.(*cacheEntry).key)
		atomic.AddInt64(&CacheEvictions, 1)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetOrCompile returns the cached handle for sig, or runs build at most once
// per signature and stores the result. A failed build leaves no entry, so an
// identical later call retries the whole pipeline. The hit flag reports
// whether build was skipped.
func (c *Cache) GetOrCompile(sig Signature, build func() (EntryPoint, error)) (EntryPoint, bool, error) {
	key := sig.Key()
	if h, ok := c.lookup(key); ok {
		return h, true, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		// a racer may have stored the handle while we queued
		if h, ok := c.lookup(key); ok {
			return h, nil
		}
		h, err := build()
		if err != nil {
			return nil, err
		}
		c.store(key, h)
		return h, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(EntryPoint), false, nil
}
