// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides the bounded block caches shared by concurrent
// lookups.
package cache

import (
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the number of blocks kept by a cache when no size is given.
const DefaultSize = 64

// Stats are cache counters.
type Stats struct {
	// Hits is the number of Get calls served from the cache.
	Hits uint64

	// Loads is the number of times a block was decoded.
	Loads uint64

	// Shared is the number of Get calls whose decode was shared with another
	// concurrent caller.
	Shared uint64
}

// Cache is a bounded least-recently-used cache of decoded blocks keyed by
// block number. Concurrent Get calls for the same missing block share a
// single load, so a block is decoded at most once while it is resident.
type Cache[V any] struct {
	lru   *lru.Cache[int, V]
	group singleflight.Group

	hits   atomic.Uint64
	loads  atomic.Uint64
	shared atomic.Uint64
}

// New returns a new cache holding at most size blocks. A size less than one
// uses DefaultSize.
func New[V any](size int) *Cache[V] {
	if size < 1 {
		size = DefaultSize
	}
	l, err := lru.New[int, V](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache[V]{lru: l}
}

// Get returns the block numbered n, calling load to decode it when it is not
// cached. Errors are returned to every waiting caller and are not cached.
func (c *Cache[V]) Get(n int, load func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(n); ok {
		c.hits.Add(1)
		return v, nil
	}

	v, err, shared := c.group.Do(strconv.Itoa(n), func() (any, error) {
		// Another flight may have stored the block since the check above.
		if v, ok := c.lru.Get(n); ok {
			c.hits.Add(1)
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.loads.Add(1)
		c.lru.Add(n, v)
		return v, nil
	})
	if shared {
		c.shared.Add(1)
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Len returns the number of cached blocks.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Purge removes all cached blocks.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Loads:  c.loads.Load(),
		Shared: c.shared.Load(),
	}
}
