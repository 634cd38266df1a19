/*
# Module: pkg/record/jobs_cache.go
Job cache entry jobs: cacheKey, readCache, writeCache.

The per-record cache map (Record.cacheMap) is seeded from the backing
Cache by readCache and mutated in place by whichever job produces a new
annotation (dependencyIdentifiers, resolvePathDependencies,
resolvePackageDependencies, code, sourceMap); writeCache persists the
accumulated map back.

## Exports
CacheKey, ReadCache, WriteCache
*/

package record

import "github.com/bundlecore/bundlecore/pkg/cache"

// CacheKey is [name, mtime] for binary files and [name, mtime, hash] for
// text files.
func (s *Store) CacheKey(ref Ref) (cache.Key, error) {
	r := s.Get(ref)
	return memo(r, jobCacheKey, func() (cache.Key, error) {
		mtime, err := s.Mtime(ref)
		if err != nil {
			return nil, err
		}
		if !s.IsTextFile(ref) {
			return cache.Key{string(ref), mtime}, nil
		}
		h, err := s.Hash(ref)
		if err != nil {
			return nil, err
		}
		return cache.Key{string(ref), mtime, h}, nil
	})
}

// ReadCache returns cache.Get(cacheKey), normalizing a miss to an empty
// map, and seeds the record's in-memory accumulator with the result so
// later jobs can annotate it before WriteCache persists it.
func (s *Store) ReadCache(ref Ref) (cache.Value, error) {
	r := s.Get(ref)
	return memo(r, jobReadCache, func() (cache.Value, error) {
		key, err := s.CacheKey(ref)
		if err != nil {
			return nil, err
		}

		value, ok := s.Config.Cache.Get(key)
		if !ok || value == nil {
			value = cache.Value{}
		}

		r.mu.Lock()
		r.cacheMap = value
		r.cacheMapOk = true
		r.mu.Unlock()

		return value, nil
	})
}

// WriteCache persists the record's accumulated cache map under its
// current cache key. It is idempotent: calling it again after further
// annotation simply overwrites the entry with the fuller map.
func (s *Store) WriteCache(ref Ref) error {
	value, err := s.ReadCache(ref)
	if err != nil {
		return err
	}
	key, err := s.CacheKey(ref)
	if err != nil {
		return err
	}
	s.Config.Cache.Set(key, value)
	return nil
}

// annotate records value under field in the record's accumulated cache
// map, first forcing ReadCache so the map exists. Errors from ReadCache
// itself are not surfaced here - a caching failure must never fail a
// build, so annotation is skipped rather than propagated.
func (s *Store) annotate(ref Ref, field string, value interface{}) {
	if _, err := s.ReadCache(ref); err != nil {
		return
	}
	r := s.Get(ref)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cacheMap == nil {
		r.cacheMap = cache.Value{}
	}
	r.cacheMap[field] = value
}

// cached looks up field in the record's accumulated cache map, if any.
func (s *Store) cached(ref Ref, field string) (interface{}, bool) {
	if _, err := s.ReadCache(ref); err != nil {
		return nil, false
	}
	r := s.Get(ref)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cacheMap == nil {
		return nil, false
	}
	v, ok := r.cacheMap[field]
	return v, ok
}
