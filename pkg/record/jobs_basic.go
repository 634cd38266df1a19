/*
# Module: pkg/record/jobs_basic.go
Filesystem and content-identity jobs.

basename, ext, isTextFile, mimeType, readText, stat, mtime, hashText,
hash, hashedFilename, hashedName - the leaves of the job DAG that every
other job in this package ultimately depends on.

## Exports
Basename, Ext, IsTextFile, MimeType, ReadText, Stat, Mtime, HashText,
Hash, HashedFilename, HashedName
*/

package record

import (
	"hash/fnv"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Basename returns the record's path basename without its extension.
func (s *Store) Basename(ref Ref) string {
	r := s.Get(ref)
	v, _ := memo(r, jobBasename, func() (string, error) {
		base := filepath.Base(string(ref))
		return strings.TrimSuffix(base, filepath.Ext(base)), nil
	})
	return v
}

// Ext returns the record's extension, including the leading dot.
func (s *Store) Ext(ref Ref) string {
	r := s.Get(ref)
	v, _ := memo(r, jobExt, func() (string, error) {
		return filepath.Ext(string(ref)), nil
	})
	return v
}

var textExtensions = map[string]bool{
	".js":   true,
	".css":  true,
	".json": true,
}

// IsTextFile reports whether ref's extension is one the record store
// treats as text: .js, .css, or .json.
func (s *Store) IsTextFile(ref Ref) bool {
	r := s.Get(ref)
	v, _ := memo(r, jobIsTextFile, func() (bool, error) {
		return textExtensions[s.Ext(ref)], nil
	})
	return v
}

// MimeType returns the standard MIME type for ref's extension, or ""
// if unknown.
func (s *Store) MimeType(ref Ref) string {
	r := s.Get(ref)
	v, _ := memo(r, jobMimeType, func() (string, error) {
		t := mime.TypeByExtension(s.Ext(ref))
		return t, nil
	})
	return v
}

// ReadText returns ref's UTF-8 file contents.
func (s *Store) ReadText(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobReadText, func() (string, error) {
		b, err := os.ReadFile(string(ref))
		if err != nil {
			return "", &IoError{Path: string(ref), Err: err}
		}
		return string(b), nil
	})
}

// Stat returns ref's filesystem metadata.
func (s *Store) Stat(ref Ref) (os.FileInfo, error) {
	r := s.Get(ref)
	return memo(r, jobStat, func() (os.FileInfo, error) {
		info, err := os.Stat(string(ref))
		if err != nil {
			return nil, &IoError{Path: string(ref), Err: err}
		}
		return info, nil
	})
}

// Mtime returns ref's modification time as integer milliseconds.
func (s *Store) Mtime(ref Ref) (int64, error) {
	r := s.Get(ref)
	return memo(r, jobMtime, func() (int64, error) {
		info, err := s.Stat(ref)
		if err != nil {
			return 0, err
		}
		return info.ModTime().UnixMilli(), nil
	})
}

// HashText returns a non-cryptographic 32-bit hash of ref's text
// contents, rendered in decimal.
func (s *Store) HashText(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobHashText, func() (string, error) {
		text, err := s.ReadText(ref)
		if err != nil {
			return "", err
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(text))
		return strconv.FormatUint(uint64(h.Sum32()), 10), nil
	})
}

// Hash is the record's content identity, used to bust caches and
// construct stable URLs: HashText for a text file, the mtime rendered as
// a string otherwise.
func (s *Store) Hash(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobHash, func() (string, error) {
		if s.IsTextFile(ref) {
			return s.HashText(ref)
		}
		mtime, err := s.Mtime(ref)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(mtime, 10), nil
	})
}

// HashedFilename is "<basename>-<hash><ext>".
func (s *Store) HashedFilename(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobHashedFilename, func() (string, error) {
		h, err := s.Hash(ref)
		if err != nil {
			return "", err
		}
		return s.Basename(ref) + "-" + h + s.Ext(ref), nil
	})
}

// HashedName is HashedFilename joined back onto ref's directory.
func (s *Store) HashedName(ref Ref) (string, error) {
	r := s.Get(ref)
	return memo(r, jobHashedName, func() (string, error) {
		name, err := s.HashedFilename(ref)
		if err != nil {
			return "", err
		}
		return filepath.Join(filepath.Dir(string(ref)), name), nil
	})
}
