/*
# Module: pkg/cache/cache.go
Keyed byte-oriented cache substrate.

Defines the Cache contract used by the record store's job cache: get/set
over an opaque ordered-tuple key, never failing a build on a read or write
error.

## Linked Modules
- [bolt](./bolt.go) - Durable bbolt-backed implementation
- [../record](../record/store.go) - Job cache entry consumer

## Tags
cache, storage

## Exports
Key, Value, Cache, NewMemCache
*/

package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Key is an ordered tuple used to address a cache entry: text files key
// on [name, mtime, hash] and binary files key on [name, mtime]; callers
// build whichever shape fits their job.
type Key []interface{}

// Value is the opaque payload stored per key. The record store's job
// cache entry uses a handful of well-known string fields
// (dependencyIdentifiers, resolvePathDependencies,
// resolvePackageDependencies, code, sourceMap) but Value itself carries no
// opinion about its contents - partial entries are valid.
type Value map[string]interface{}

// String renders the key to a deterministic string suitable for use as a
// map key or a bbolt bucket key. The tuple's order already fixes the
// encoding; each element is JSON-encoded independently so heterogeneous
// element types (string names, int64 mtimes) round-trip exactly.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, part := range k {
		b, err := json.Marshal(part)
		if err != nil {
			b = []byte(fmt.Sprintf("%q", sortedFallback(part)))
		}
		parts[i] = string(b)
	}
	out, _ := json.Marshal(parts)
	return string(out)
}

func sortedFallback(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("%v", keys)
	}
	return fmt.Sprintf("%v", v)
}

// Cache is the persistent key-value cache backend contract. A miss, a
// read error, and a parse error are all reported identically as
// (nil, false) - a cache must never fail a build. Set errors are logged
// by the implementation, never surfaced to the caller.
type Cache interface {
	Get(key Key) (Value, bool)
	Set(key Key, value Value)
}

// MemCache is an in-memory Cache with no persistence, identical in
// contract to the durable backends. It backs tests and profiling runs,
// and also layers as the write-through front of BoltCache so a Set is
// immediately readable by a subsequent Get in the same process.
type MemCache struct {
	mu      sync.RWMutex
	entries map[string]Value
}

// NewMemCache creates an empty in-memory cache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]Value)}
}

func (c *MemCache) Get(key Key) (Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key.String()]
	return v, ok
}

func (c *MemCache) Set(key Key, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = value
}
