package eviction

import "container/list"

type lruNode[K comparable] struct {
	key     K
	recency uint64
}

// lru keeps keys ordered by recency: front is the most recent, back the least.
// recency is a logical clock value, strictly increasing per touch, so the
// back of the list always holds the smallest recency. Ties cannot happen.
type lru[K comparable] struct {
	clock uint64
	order *list.List
	nodes map[K]*list.Element
}

func newLRU[K comparable]() *lru[K] {
	return &lru[K]{order: list.New(), nodes: make(map[K]*list.Element)}
}

func (l *lru[K]) tick() uint64 {
	l.clock++
	return l.clock
}

func (l *lru[K]) OnGet(k K) {
	if e, ok := l.nodes[k]; ok {
		e.Value.(*lruNode[K]).recency = l.tick()
		l.order.MoveToFront(e)
	}
}

// OnPut treats a rewrite of a resident key as an access.
func (l *lru[K]) OnPut(k K) {
	if e, ok := l.nodes[k]; ok {
		e.Value.(*lruNode[K]).recency = l.tick()
		l.order.MoveToFront(e)
		return
	}
	l.nodes[k] = l.order.PushFront(&lruNode[K]{key: k, recency: l.tick()})
}

func (l *lru[K]) Remove(k K) {
	if e, ok := l.nodes[k]; ok {
		l.order.Remove(e)
		delete(l.nodes, k)
	}
}

func (l *lru[K]) Evict() (K, bool) {
	e := l.order.Back()
	if e == nil {
		var zero K
		return zero, false
	}
	n := l.order.Remove(e).(*lruNode[K])
	delete(l.nodes, n.key)
	return n.key, true
}

func (l *lru[K]) Len() int { return len(l.nodes) }

func (l *lru[K]) Reset() {
	l.order.Init()
	l.nodes = make(map[K]*list.Element)
}

// Recency returns the logical timestamp of the last access to k.
func (l *lru[K]) Recency(k K) (uint64, bool) {
	e, ok := l.nodes[k]
	if !ok {
		return 0, false
	}
	return e.Value.(*lruNode[K]).recency, true
}
