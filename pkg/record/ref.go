/*
# Module: pkg/record/ref.go
File reference identity.

A Ref identifies exactly one record in the store: an absolute, cleaned
path. Two Refs are equal iff their paths are equal.

## Exports
Ref, NewRef
*/

package record

import "path/filepath"

// Ref is the identity of a file in the record store: its absolute,
// cleaned path. It is immutable once created and comparable with ==.
type Ref string

// NewRef normalizes path into a Ref (absolute, cleaned, with the
// platform's own separators). A relative path is resolved against the
// process working directory exactly once, at construction time - nothing
// downstream ever consults the working directory again.
func NewRef(path string) (Ref, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &IoError{Path: path, Err: err}
	}
	return Ref(filepath.Clean(abs)), nil
}

// MustRef is NewRef for callers (tests, CLI flag parsing after validation)
// that have already established the path is well-formed.
func MustRef(path string) Ref {
	ref, err := NewRef(path)
	if err != nil {
		panic(err)
	}
	return ref
}

// String returns the underlying path.
func (r Ref) String() string { return string(r) }
