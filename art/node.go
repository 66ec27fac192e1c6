package art

// The trie is a tagged variant over five node kinds: a leaf plus four inner
// representations sized by fan-out (4/16/48/256 children). Inner nodes carry
// a compressed prefix so single-child runs cost one node, not one per byte.

type node interface {
	kind() nodeKind
}

type nodeKind uint8

const (
	kindLeaf nodeKind = iota
	kindNode4
	kindNode16
	kindNode48
	kindNode256
)

// leaf holds a full terminated key and the path ID it maps to.
type leaf struct {
	key []byte
	id  uint32
}

func (*leaf) kind() nodeKind { return kindLeaf }

// meta is the shared header of all inner node kinds.
type meta struct {
	prefix []byte
	count  int
}

// inner is the contract shared by the four sized node kinds.
//
// addChild may return a larger representation when the current one is full;
// removeChild may return a smaller one (or collapse to the remaining child)
// so memory stays bounded by actual fan-out.
type inner interface {
	node
	header() *meta
	findChild(b byte) node
	addChild(b byte, c node) inner
	replaceChild(b byte, c node)
	removeChild(b byte) node
	// iter visits children in ascending byte order; returns false if fn
	// stopped the iteration.
	iter(fn func(c node) bool) bool
}

// Compile time checks that all sized nodes satisfy inner.
var (
	_ inner = (*node4)(nil)
	_ inner = (*node16)(nil)
	_ inner = (*node48)(nil)
	_ inner = (*node256)(nil)
)

// node4 and node16 keep their keys sorted so iteration is ordered for free.
type node4 struct {
	meta
	keys     [4]byte
	children [4]node
}

type node16 struct {
	meta
	keys     [16]byte
	children [16]node
}

// node48 maps each possible byte to a slot via index (0 = empty, else
// slot+1), keeping the 48 child pointers dense.
type node48 struct {
	meta
	index    [256]byte
	children [48]node
}

type node256 struct {
	meta
	children [256]node
}

func (*node4) kind() nodeKind   { return kindNode4 }
func (*node16) kind() nodeKind  { return kindNode16 }
func (*node48) kind() nodeKind  { return kindNode48 }
func (*node256) kind() nodeKind { return kindNode256 }

func (n *node4) header() *meta   { return &n.meta }
func (n *node16) header() *meta  { return &n.meta }
func (n *node48) header() *meta  { return &n.meta }
func (n *node256) header() *meta { return &n.meta }

// --- node4 ---

func (n *node4) findChild(b byte) node {
	for i := 0; i < n.count; i++ {
		if n.keys[i] == b {
			return n.children[i]
		}
	}
	return nil
}

func (n *node4) addChild(b byte, c node) inner {
	if n.count == len(n.keys) {
		return n.grow().addChild(b, c)
	}
	i := n.count
	for i > 0 && n.keys[i-1] > b {
		n.keys[i] = n.keys[i-1]
		n.children[i] = n.children[i-1]
		i--
	}
	n.keys[i] = b
	n.children[i] = c
	n.count++
	return n
}

func (n *node4) replaceChild(b byte, c node) {
	for i := 0; i < n.count; i++ {
		if n.keys[i] == b {
			n.children[i] = c
			return
		}
	}
}

func (n *node4) removeChild(b byte) node {
	i := 0
	for ; i < n.count; i++ {
		if n.keys[i] == b {
			break
		}
	}
	if i == n.count {
		return n
	}
	copy(n.keys[i:], n.keys[i+1:n.count])
	copy(n.children[i:], n.children[i+1:n.count])
	n.count--
	n.children[n.count] = nil

	if n.count == 1 {
		// Collapse the single-child run into the child.
		c := n.children[0]
		ci, ok := c.(inner)
		if !ok {
			return c
		}
		merged := make([]byte, 0, len(n.prefix)+1+len(ci.header().prefix))
		merged = append(merged, n.prefix...)
		merged = append(merged, n.keys[0])
		merged = append(merged, ci.header().prefix...)
		ci.header().prefix = merged
		return c
	}
	return n
}

func (n *node4) iter(fn func(c node) bool) bool {
	for i := 0; i < n.count; i++ {
		if !fn(n.children[i]) {
			return false
		}
	}
	return true
}

func (n *node4) grow() *node16 {
	g := &node16{meta: n.meta}
	copy(g.keys[:], n.keys[:n.count])
	copy(g.children[:], n.children[:n.count])
	return g
}

// --- node16 ---

func (n *node16) findChild(b byte) node {
	for i := 0; i < n.count; i++ {
		if n.keys[i] == b {
			return n.children[i]
		}
	}
	return nil
}

func (n *node16) addChild(b byte, c node) inner {
	if n.count == len(n.keys) {
		return n.grow().addChild(b, c)
	}
	i := n.count
	for i > 0 && n.keys[i-1] > b {
		n.keys[i] = n.keys[i-1]
		n.children[i] = n.children[i-1]
		i--
	}
	n.keys[i] = b
	n.children[i] = c
	n.count++
	return n
}

func (n *node16) replaceChild(b byte, c node) {
	for i := 0; i < n.count; i++ {
		if n.keys[i] == b {
			n.children[i] = c
			return
		}
	}
}

func (n *node16) removeChild(b byte) node {
	i := 0
	for ; i < n.count; i++ {
		if n.keys[i] == b {
			break
		}
	}
	if i == n.count {
		return n
	}
	copy(n.keys[i:], n.keys[i+1:n.count])
	copy(n.children[i:], n.children[i+1:n.count])
	n.count--
	n.children[n.count] = nil

	if n.count <= 4 {
		s := &node4{meta: n.meta}
		copy(s.keys[:], n.keys[:n.count])
		copy(s.children[:], n.children[:n.count])
		return s
	}
	return n
}

func (n *node16) iter(fn func(c node) bool) bool {
	for i := 0; i < n.count; i++ {
		if !fn(n.children[i]) {
			return false
		}
	}
	return true
}

func (n *node16) grow() *node48 {
	g := &node48{meta: n.meta}
	for i := 0; i < n.count; i++ {
		g.index[n.keys[i]] = byte(i + 1)
		g.children[i] = n.children[i]
	}
	return g
}

// --- node48 ---

func (n *node48) findChild(b byte) node {
	if idx := n.index[b]; idx != 0 {
		return n.children[idx-1]
	}
	return nil
}

func (n *node48) addChild(b byte, c node) inner {
	if n.count == len(n.children) {
		return n.grow().addChild(b, c)
	}
	// Find the first free slot; slots below count may be holes after
	// removals, so scan.
	slot := 0
	for n.children[slot] != nil {
		slot++
	}
	n.children[slot] = c
	n.index[b] = byte(slot + 1)
	n.count++
	return n
}

func (n *node48) replaceChild(b byte, c node) {
	if idx := n.index[b]; idx != 0 {
		n.children[idx-1] = c
	}
}

func (n *node48) removeChild(b byte) node {
	idx := n.index[b]
	if idx == 0 {
		return n
	}
	n.children[idx-1] = nil
	n.index[b] = 0
	n.count--

	if n.count <= 16 {
		s := &node16{meta: n.meta}
		for b := 0; b < 256; b++ {
			if idx := n.index[b]; idx != 0 {
				s.keys[s.count] = byte(b)
				s.children[s.count] = n.children[idx-1]
				s.count++
			}
		}
		return s
	}
	return n
}

func (n *node48) iter(fn func(c node) bool) bool {
	for b := 0; b < 256; b++ {
		if idx := n.index[b]; idx != 0 {
			if !fn(n.children[idx-1]) {
				return false
			}
		}
	}
	return true
}

func (n *node48) grow() *node256 {
	g := &node256{meta: n.meta}
	for b := 0; b < 256; b++ {
		if idx := n.index[b]; idx != 0 {
			g.children[b] = n.children[idx-1]
		}
	}
	return g
}

// --- node256 ---

func (n *node256) findChild(b byte) node {
	return n.children[b]
}

func (n *node256) addChild(b byte, c node) inner {
	if n.children[b] == nil {
		n.count++
	}
	n.children[b] = c
	return n
}

func (n *node256) replaceChild(b byte, c node) {
	n.children[b] = c
}

func (n *node256) removeChild(b byte) node {
	if n.children[b] == nil {
		return n
	}
	n.children[b] = nil
	n.count--

	if n.count <= 48 {
		s := &node48{meta: n.meta}
		slot := 0
		for b := 0; b < 256; b++ {
			if c := n.children[b]; c != nil {
				s.index[b] = byte(slot + 1)
				s.children[slot] = c
				slot++
			}
		}
		s.count = n.count
		return s
	}
	return n
}

func (n *node256) iter(fn func(c node) bool) bool {
	for b := 0; b < 256; b++ {
		if c := n.children[b]; c != nil {
			if !fn(c) {
				return false
			}
		}
	}
	return true
}
