// Package queue provides a value-based priority queue used for bounded
// top-N candidate selection during search.
package queue

// Item is one scored candidate in the queue.
// Value-based on purpose: no pointer indirection, zero allocations in the
// steady state.
type Item struct {
	ID    uint32
	Score float64
}

// PriorityQueue is a binary heap over Items.
type PriorityQueue struct {
	isMaxHeap bool
	items     []Item
}

// NewMin initializes a min-heap: the item with the smallest score is on top.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{isMaxHeap: false, items: make([]Item, 0, capacity)}
}

// NewMax initializes a max-heap: the item with the largest score is on top.
func NewMax(capacity int) *PriorityQueue {
	return &PriorityQueue{isMaxHeap: true, items: make([]Item, 0, capacity)}
}

// Len returns the number of items in the queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// TopItem returns the top element without removing it.
func (pq *PriorityQueue) TopItem() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element.
func (pq *PriorityQueue) PopItem() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item{}
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// PushBounded keeps at most k items, retaining the k best scores.
// Only valid on a min-heap: the top is the worst retained score and is
// evicted when a better item arrives.
func (pq *PriorityQueue) PushBounded(item Item, k int) {
	if k <= 0 {
		return
	}
	if len(pq.items) < k {
		pq.PushItem(item)
		return
	}
	if top, _ := pq.TopItem(); item.Score > top.Score {
		pq.PopItem()
		pq.PushItem(item)
	}
}

// Drain pops all items into a slice in pop order (worst to best for a
// min-heap, best to worst for a max-heap).
func (pq *PriorityQueue) Drain() []Item {
	out := make([]Item, 0, len(pq.items))
	for {
		item, ok := pq.PopItem()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}

// Reset clears the queue for reuse without freeing memory.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Score > pq.items[j].Score
	}
	return pq.items[i].Score < pq.items[j].Score
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
