/*
# Module: pkg/record/store.go
Per-file memoized job DAG.

A Store holds one Record per Ref. Each job within a record is computed at
most once per record lifetime; concurrent callers of the same job on the
same record share the pending computation rather than racing to
recompute it. Dynamic call-any-other-job-by-name dispatch is replaced
here with a statically enumerated job set indexed by a tagged jobKind -
that is what jobSlot and memo below provide.

## Linked Modules
- [jobs_basic](./jobs_basic.go) - Filesystem/identity jobs
- [jobs_cache](./jobs_cache.go) - Job cache entry jobs
- [jobs_deps](./jobs_deps.go) - Dependency analysis/resolution jobs
- [jobs_content](./jobs_content.go) - Code/module-definition jobs
- [../config](../config/config.go) - Shared configuration
- [../cache](../cache/cache.go) - Persistent cache backend
- [../resolver](../resolver/resolver.go) - Module resolver
- [../transform](../transform/transform.go) - AST/codegen adapter

## Tags
record, store, job-dag, memoization

## Exports
Store, NewStore, Record
*/

package record

import (
	"sync"

	"github.com/bundlecore/bundlecore/pkg/cache"
	"github.com/bundlecore/bundlecore/pkg/config"
	"github.com/bundlecore/bundlecore/pkg/resolver"
	"github.com/bundlecore/bundlecore/pkg/transform"
)

// jobKind tags one of the statically enumerated jobs a Record can compute.
type jobKind int

const (
	jobBasename jobKind = iota
	jobExt
	jobIsTextFile
	jobMimeType
	jobReadText
	jobStat
	jobMtime
	jobHashText
	jobHash
	jobHashedFilename
	jobHashedName
	jobCacheKey
	jobReadCache
	jobURL
	jobSourceURL
	jobSourceMapAnnotation
	jobAST
	jobAnalyzeDependencies
	jobDependencyIdentifiers
	jobPathDependencyIdentifiers
	jobPackageDependencyIdentifiers
	jobResolvePathDependencies
	jobResolvePackageDependencies
	jobResolvedDependencies
	jobCode
	jobModuleContents
	jobShouldShimModuleDefinition
	jobModuleCode
	jobModuleDefinition
	jobContent
	jobSourceMap
	jobFileDependencies
	jobReady
)

// slotState is the monotonic lifecycle of one (record, job) pair.
type slotState int

const (
	stateUnstarted slotState = iota
	statePending
	stateResolved
	stateFailed
)

type jobSlot struct {
	state slotState
	value interface{}
	err   error
	done  chan struct{}
}

// Record is the per-Ref lazy evaluation context: a map from job kind to
// memoized result, plus a back-reference to the owning store so jobs can
// invoke other jobs through explicit recursive calls.
type Record struct {
	ref   Ref
	store *Store

	mu    sync.Mutex
	slots map[jobKind]*jobSlot

	// cacheMap accumulates annotations written by code/dependencyIdentifiers/
	// resolvePathDependencies/resolvePackageDependencies/sourceMap so that
	// writeCache can persist the whole entry at once. It is seeded from the
	// backing Cache the first time readCache runs.
	cacheMap   cache.Value
	cacheMapOk bool
}

// Store owns every Record created for the lifetime of a trace. Records
// are created lazily by get and destroyed only when the tracer discards
// them (graph prune) or the process ends.
type Store struct {
	Config         *config.Config
	ModuleResolver *resolver.Resolver
	Parser         transform.Parser
	Xform          transform.Transformer
	Gen            transform.Generator
	CSS            transform.CSSProcessor

	mu      sync.Mutex
	records map[Ref]*Record
}

// NewStore creates an empty store bound to the given collaborators. None
// of them are optional: the resolver and the AST/codegen adapter are
// external collaborators wired in at construction time, never looked up
// from a global.
func NewStore(cfg *config.Config, res *resolver.Resolver, parser transform.Parser, xform transform.Transformer, gen transform.Generator, css transform.CSSProcessor) *Store {
	return &Store{
		Config:         cfg,
		ModuleResolver: res,
		Parser:         parser,
		Xform:          xform,
		Gen:            gen,
		CSS:            css,
		records:        make(map[Ref]*Record),
	}
}

// Get returns the Record for ref, creating it on first use. A Record is
// permanent once created until the tracer discards it via Forget.
func (s *Store) Get(ref Ref) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[ref]; ok {
		return r
	}
	r := &Record{ref: ref, store: s, slots: make(map[jobKind]*jobSlot)}
	s.records[ref] = r
	return r
}

// Forget discards a Record, e.g. after the dependency graph prunes the
// corresponding node. A subsequent Get recreates a fresh Record with no
// memoized jobs.
func (s *Store) Forget(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, ref)
}

// memo is the statically-typed memoization barrier every job in this
// package goes through: a second call while pending attaches to the same
// future; a call after resolution or failure replays the cached outcome
// without recomputing.
func memo[T any](r *Record, kind jobKind, compute func() (T, error)) (T, error) {
	r.mu.Lock()
	slot, ok := r.slots[kind]
	if !ok {
		slot = &jobSlot{state: statePending, done: make(chan struct{})}
		r.slots[kind] = slot
		r.mu.Unlock()

		value, err := compute()

		r.mu.Lock()
		slot.value, slot.err = value, err
		if err != nil {
			slot.state = stateFailed
		} else {
			slot.state = stateResolved
		}
		close(slot.done)
		r.mu.Unlock()

		var zero T
		if err != nil {
			return zero, err
		}
		return value, nil
	}

	switch slot.state {
	case stateResolved:
		r.mu.Unlock()
		return slot.value.(T), nil
	case stateFailed:
		r.mu.Unlock()
		var zero T
		return zero, slot.err
	default: // statePending: another goroutine is computing this job now.
		r.mu.Unlock()
		<-slot.done
		r.mu.Lock()
		defer r.mu.Unlock()
		if slot.err != nil {
			var zero T
			return zero, slot.err
		}
		return slot.value.(T), nil
	}
}
