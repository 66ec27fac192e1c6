// Package norm canonicalizes raw path strings before they touch an index.
//
// All index structures key on the normalized form so that a path observed
// through different spellings (backslashes, redundant separators, mixed
// case on case-folding setups) maps to a single entry.
package norm

import (
	"path"
	"strings"
)

// Normalizer folds raw paths into canonical index keys.
//
// The zero value is not usable; construct with New.
type Normalizer struct {
	caseSensitive bool
}

// New creates a Normalizer. When caseSensitive is false, keys are folded to
// lower case so lookups match regardless of the spelling on disk.
func New(caseSensitive bool) *Normalizer {
	return &Normalizer{caseSensitive: caseSensitive}
}

// Key returns the canonical index key for a raw path: separators unified to
// forward slashes, redundant segments cleaned, optional case folding.
// An empty input yields an empty key.
func (n *Normalizer) Key(raw string) string {
	if raw == "" {
		return ""
	}
	p := strings.ReplaceAll(raw, `\`, "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	if !n.caseSensitive {
		p = strings.ToLower(p)
	}
	return p
}

// Fold applies the same case folding as Key to an arbitrary string, e.g. a
// query or a basename headed for the trigram index.
func (n *Normalizer) Fold(s string) string {
	if n.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Base returns the final component of a normalized key.
func Base(key string) string {
	if key == "" {
		return ""
	}
	return path.Base(key)
}

// Ext returns the extension of a normalized key including the leading dot,
// or "" if the basename has none.
func Ext(key string) string {
	return path.Ext(key)
}

// Valid reports whether a raw path is acceptable input for the index.
// Rejected are empty strings, strings that clean away to nothing and
// strings containing NUL bytes.
func Valid(raw string) bool {
	if raw == "" || strings.ContainsRune(raw, 0) {
		return false
	}
	p := path.Clean(strings.ReplaceAll(raw, `\`, "/"))
	return p != "." && p != ""
}

// HasPrefixDir reports whether key is dir itself or lies underneath dir.
// Both arguments must already be normalized.
func HasPrefixDir(key, dir string) bool {
	if dir == "" || key == "" {
		return false
	}
	dir = strings.TrimSuffix(dir, "/")
	if key == dir {
		return true
	}
	return strings.HasPrefix(key, dir+"/")
}
