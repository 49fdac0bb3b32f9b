// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
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

package cache

import (
	"container/list"
	"sync"
)

// SegmentCache provides an LRU cache of raw segment bytes keyed by segment
// name. An entry only hits when the stored version matches the requested one,
// so appended or rewritten segments are re-read.
type SegmentCache struct {
	mu       sync.Mutex
	capacity int
	size     int
	ll       *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	name    string
	version string
	data    []byte
}

// NewSegmentCache creates a cache with capacity in bytes.
func NewSegmentCache(capacityBytes int) *SegmentCache {
	if capacityBytes <= 0 {
		capacityBytes = 1
	}
	return &SegmentCache{
		capacity: capacityBytes,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns cached data if present at the given version.
func (c *SegmentCache) Get(name, version string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[name]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if entry.version != version {
		c.removeElement(elem)
		return nil, false
	}
	c.ll.MoveToFront(elem)
	return entry.data, true
}

// Set adds or replaces the entry for name.
func (c *SegmentCache) Set(name, version string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[name]; ok {
		entry := elem.Value.(*cacheEntry)
		c.size -= len(entry.data)
		entry.version = version
		entry.data = append([]byte(nil), data...)
		c.size += len(entry.data)
		c.ll.MoveToFront(elem)
		c.evictIfNeeded()
		return
	}
	entry := &cacheEntry{
		name:    name,
		version: version,
		data:    append([]byte(nil), data...),
	}
	c.items[name] = c.ll.PushFront(entry)
	c.size += len(entry.data)
	c.evictIfNeeded()
}

// Invalidate drops name from the cache.
func (c *SegmentCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[name]; ok {
		c.removeElement(elem)
	}
}

// Len returns the number of cached segments.
func (c *SegmentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *SegmentCache) evictIfNeeded() {
	for c.size > c.capacity && c.ll.Len() > 0 {
		c.removeElement(c.ll.Back())
	}
}

func (c *SegmentCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.name)
	c.ll.Remove(elem)
	c.size -= len(entry.data)
}
