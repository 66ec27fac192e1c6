// Package art implements an adaptive radix trie over normalized path keys.
//
// The trie compresses single-child runs (path compression) and adapts the
// inner node representation to the actual fan-out (4/16/48/256 children),
// bounding memory overhead while keeping prefix search O(len(prefix)) plus
// the size of the matched subtree.
//
// Keys are terminated internally with a zero byte so that a key may be a
// strict prefix of another key ("/a/b" next to "/a/b/c"). Inputs must not
// contain NUL bytes; the normalizer upstream rejects them.
package art

import (
	"bytes"
	"sync"
)

// Tree is a thread-safe adaptive radix trie mapping normalized path keys
// to path IDs.
//
// Reads run concurrently under a shared lock; mutations are exclusive.
// Bulk loaders should insert in chunks so readers interleave.
type Tree struct {
	mu   sync.RWMutex
	root node
	size int
}

// New creates an empty Tree.
func New() *Tree {
	return &Tree{}
}

// Len returns the number of keys in the trie.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Insert adds a key with its path ID. Inserting an existing key is a no-op
// and returns false, so Insert is idempotent.
func (t *Tree) Insert(key string, id uint32) bool {
	k := terminate(key)

	t.mu.Lock()
	defer t.mu.Unlock()

	root, created := t.insert(t.root, k, 0, &leaf{key: k, id: id})
	t.root = root
	if created {
		t.size++
	}
	return created
}

// Delete removes a key. Deleting an absent key is a silent no-op returning
// false.
func (t *Tree) Delete(key string) bool {
	k := terminate(key)

	t.mu.Lock()
	defer t.mu.Unlock()

	root, deleted := t.delete(t.root, k, 0)
	if deleted {
		t.root = root
		t.size--
	}
	return deleted
}

// SearchPrefix returns up to limit path IDs whose keys start with prefix,
// in ascending byte order of the full key. A prefix with no matches yields
// an empty result, never an error. limit <= 0 means no limit.
func (t *Tree) SearchPrefix(prefix string, limit int) []uint32 {
	p := []byte(prefix)

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.root
	rem := p
	for n != nil {
		if l, ok := n.(*leaf); ok {
			if leafHasPrefix(l, p) {
				return []uint32{l.id}
			}
			return nil
		}

		in := n.(inner)
		h := in.header()
		m := len(h.prefix)
		if len(rem) < m {
			m = len(rem)
		}
		if !bytes.Equal(h.prefix[:m], rem[:m]) {
			return nil
		}
		if len(rem) <= len(h.prefix) {
			// The whole subtree matches.
			out := make([]uint32, 0, 16)
			collect(in, limit, &out)
			return out
		}
		rem = rem[len(h.prefix):]
		n = in.findChild(rem[0])
		rem = rem[1:]
	}
	return nil
}

// Walk visits every (key, id) pair in ascending key order until fn returns
// false. Intended for diagnostics and full rebuilds.
func (t *Tree) Walk(fn func(key string, id uint32) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	walk(t.root, fn)
}

func walk(n node, fn func(key string, id uint32) bool) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *leaf:
		return fn(string(v.key[:len(v.key)-1]), v.id)
	case inner:
		return v.iter(func(c node) bool {
			return walk(c, fn)
		})
	}
	return true
}

func collect(n node, limit int, out *[]uint32) bool {
	if limit > 0 && len(*out) >= limit {
		return false
	}
	switch v := n.(type) {
	case *leaf:
		*out = append(*out, v.id)
		return limit <= 0 || len(*out) < limit
	case inner:
		return v.iter(func(c node) bool {
			return collect(c, limit, out)
		})
	}
	return true
}

func (t *Tree) insert(n node, key []byte, depth int, l *leaf) (node, bool) {
	if n == nil {
		return l, true
	}

	if existing, ok := n.(*leaf); ok {
		if bytes.Equal(existing.key, key) {
			return existing, false
		}
		// Split the two leaves under a fresh node4 holding their common
		// suffix run.
		common := commonPrefixLen(existing.key[depth:], key[depth:])
		n4 := &node4{}
		n4.prefix = append([]byte(nil), key[depth:depth+common]...)
		var in inner = n4
		in = in.addChild(existing.key[depth+common], existing)
		in = in.addChild(key[depth+common], l)
		return in, true
	}

	in := n.(inner)
	h := in.header()
	p := mismatch(h.prefix, key, depth)
	if p < len(h.prefix) {
		// The key diverges inside the compressed prefix: split the node.
		n4 := &node4{}
		n4.prefix = append([]byte(nil), h.prefix[:p]...)

		oldByte := h.prefix[p]
		h.prefix = append([]byte(nil), h.prefix[p+1:]...)

		var split inner = n4
		split = split.addChild(oldByte, in)
		split = split.addChild(key[depth+p], l)
		return split, true
	}

	depth += len(h.prefix)
	b := key[depth]
	child := in.findChild(b)
	if child == nil {
		return in.addChild(b, l), true
	}

	newChild, created := t.insert(child, key, depth+1, l)
	if newChild != child {
		in.replaceChild(b, newChild)
	}
	return in, created
}

func (t *Tree) delete(n node, key []byte, depth int) (node, bool) {
	if n == nil {
		return nil, false
	}

	if l, ok := n.(*leaf); ok {
		if bytes.Equal(l.key, key) {
			return nil, true
		}
		return n, false
	}

	in := n.(inner)
	h := in.header()
	if mismatch(h.prefix, key, depth) < len(h.prefix) {
		return n, false
	}
	depth += len(h.prefix)
	b := key[depth]
	child := in.findChild(b)
	if child == nil {
		return n, false
	}

	newChild, deleted := t.delete(child, key, depth+1)
	if !deleted {
		return n, false
	}
	if newChild == nil {
		return in.removeChild(b), true
	}
	if newChild != child {
		in.replaceChild(b, newChild)
	}
	return in, true
}

// terminate appends the zero sentinel so no stored key is a byte-prefix of
// another stored key.
func terminate(key string) []byte {
	k := make([]byte, 0, len(key)+1)
	k = append(k, key...)
	return append(k, 0)
}

func leafHasPrefix(l *leaf, prefix []byte) bool {
	return bytes.HasPrefix(l.key[:len(l.key)-1], prefix)
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// mismatch returns the first position where key[depth:] diverges from
// prefix, or len(prefix) on a full match.
func mismatch(prefix, key []byte, depth int) int {
	n := len(prefix)
	if rem := len(key) - depth; rem < n {
		n = rem
	}
	for i := 0; i < n; i++ {
		if prefix[i] != key[depth+i] {
			return i
		}
	}
	return n
}
