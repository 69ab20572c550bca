package eviction

import "container/list"

// fifo evicts in insertion order. Reads and rewrites do not reorder keys.
type fifo[K comparable] struct {
	queue *list.List
	nodes map[K]*list.Element
}

func newFIFO[K comparable]() *fifo[K] {
	return &fifo[K]{queue: list.New(), nodes: make(map[K]*list.Element)}
}

func (f *fifo[K]) OnGet(K) {}

func (f *fifo[K]) OnPut(k K) {
	if _, ok := f.nodes[k]; ok {
		return
	}
	f.nodes[k] = f.queue.PushBack(k)
}

func (f *fifo[K]) Remove(k K) {
	if e, ok := f.nodes[k]; ok {
		f.queue.Remove(e)
		delete(f.nodes, k)
	}
}

func (f *fifo[K]) Evict() (K, bool) {
	e := f.queue.Front()
	if e == nil {
		var zero K
		return zero, false
	}
	k := f.queue.Remove(e).(K)
	delete(f.nodes, k)
	return k, true
}

func (f *fifo[K]) Len() int { return len(f.nodes) }

func (f *fifo[K]) Reset() {
	f.queue.Init()
	f.nodes = make(map[K]*list.Element)
}
