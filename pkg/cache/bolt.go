/*
# Module: pkg/cache/bolt.go
Durable, bbolt-backed cache backend.

Provides a disk-based Cache implementation with an in-memory write-through
layer, and a CacheSet that wires up the four persisted cache directories
a trace needs (AST, dependency, package resolver, module resolver).

## Linked Modules
- [cache](./cache.go) - Cache contract

## Tags
cache, persistence, bbolt

## Exports
BoltCache, NewBoltCache, CacheSet, NewCacheSet
*/

package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const entriesBucket = "entries"

// BoltCache is a durable Cache backed by a single bbolt bucket, with an
// in-memory MemCache layered on top so a write is immediately visible to
// a subsequent read in the same process, even before it lands on disk.
type BoltCache struct {
	db   *bolt.DB
	mem  *MemCache
	path string
}

// NewBoltCache opens (creating if necessary) a bbolt database at dbPath
// with a single bucket for cache entries.
func NewBoltCache(dbPath string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir for %s: %w", dbPath, err)
	}
	db, err := bolt.Open(dbPath, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dbPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(entriesBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init bucket in %s: %w", dbPath, err)
	}
	return &BoltCache{db: db, mem: NewMemCache(), path: dbPath}, nil
}

// Get implements Cache. A miss, a closed database, or a corrupt entry are
// all reported as (nil, false); a cache must never fail a build.
func (c *BoltCache) Get(key Key) (Value, bool) {
	if v, ok := c.mem.Get(key); ok {
		return v, ok
	}

	k := key.String()
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entriesBucket))
		data := b.Get([]byte(k))
		if data == nil {
			return errNotFound
		}
		raw = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, false
	}

	var value Value
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Printf("cache: discarding unreadable entry for %s: %v", c.path, err)
		return nil, false
	}

	c.mem.Set(key, value)
	return value, true
}

// Set implements Cache. Persistence errors are logged, never surfaced.
func (c *BoltCache) Set(key Key, value Value) {
	c.mem.Set(key, value)

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to serialize entry for %s: %v", c.path, err)
		return
	}

	k := key.String()
	err = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entriesBucket))
		return b.Put([]byte(k), raw)
	})
	if err != nil {
		log.Printf("cache: failed to persist entry for %s: %v", c.path, err)
	}
}

// Close releases the underlying bbolt database handle.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

// Path returns the bbolt database file backing c.
func (c *BoltCache) Path() string {
	return c.path
}

// Count returns the number of entries currently stored in c.
func (c *BoltCache) Count() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(entriesBucket)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache: count entries in %s: %w", c.path, err)
	}
	return n, nil
}

var errNotFound = fmt.Errorf("cache: not found")

// EntryStats reports the size of one persisted cache bucket, named after
// the directory it was opened under (e.g. "ast_cache").
type EntryStats struct {
	Name       string
	EntryCount int
	SizeBytes  int64
}

// CacheSet wires up the four persisted cache directories a trace needs:
// ast_cache, dependency_cache, and the lockfile-hash-namespaced
// package/module resolver caches.
type CacheSet struct {
	AST             Cache
	Dependency      Cache
	PackageResolver Cache
	ModuleResolver  Cache
	closers         []*BoltCache
	names           []string
	dirs            []string
}

// NewCacheSet opens the four persisted caches under root, namespacing the
// two resolver caches by dependencyTreeHash so a lockfile upgrade
// invalidates stale resolutions without touching anything else.
func NewCacheSet(root, dependencyTreeHash string) (*CacheSet, error) {
	var dirs []string
	open := func(rel string) (*BoltCache, error) {
		dir := filepath.Join(root, ".bundlecore", rel)
		dirs = append(dirs, dir)
		return NewBoltCache(filepath.Join(dir, "store.db"))
	}

	ast, err := open("ast_cache")
	if err != nil {
		return nil, err
	}
	dep, err := open("dependency_cache")
	if err != nil {
		return nil, err
	}
	pkgResolver, err := open(filepath.Join("package_resolver_cache", dependencyTreeHash))
	if err != nil {
		return nil, err
	}
	modResolver, err := open(filepath.Join("module_resolver_cache", dependencyTreeHash))
	if err != nil {
		return nil, err
	}

	return &CacheSet{
		AST:             ast,
		Dependency:      dep,
		PackageResolver: pkgResolver,
		ModuleResolver:  modResolver,
		closers:         []*BoltCache{ast, dep, pkgResolver, modResolver},
		names:           []string{"ast_cache", "dependency_cache", "package_resolver_cache", "module_resolver_cache"},
		dirs:            dirs,
	}, nil
}

// Stats reports the entry count and on-disk size of each of the four
// persisted caches.
func (s *CacheSet) Stats() ([]EntryStats, error) {
	stats := make([]EntryStats, 0, len(s.closers))
	for i, c := range s.closers {
		n, err := c.Count()
		if err != nil {
			return nil, err
		}
		var size int64
		if info, err := os.Stat(c.Path()); err == nil {
			size = info.Size()
		}
		stats = append(stats, EntryStats{Name: s.names[i], EntryCount: n, SizeBytes: size})
	}
	return stats, nil
}

// Clear closes every persisted cache and removes its on-disk directory,
// so the next trace starts from a cold cache.
func (s *CacheSet) Clear() error {
	if err := s.Close(); err != nil {
		return err
	}
	for _, dir := range s.dirs {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("cache: remove %s: %w", dir, err)
		}
	}
	return nil
}

// Close releases every underlying bbolt handle opened by NewCacheSet.
func (s *CacheSet) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
