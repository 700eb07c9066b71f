package cache

import (
	"container/heap"
	"sync"
)

type deferItem struct {
	fireAt int64
	gen    uint64
	key    string
}

type deferHeap []deferItem

func (h deferHeap) Len() int { return len(h) }

func (h deferHeap) Less(i, j int) bool {
	if h[i].fireAt == h[j].fireAt {
		return h[i].gen < h[j].gen
	}

	return h[i].fireAt < h[j].fireAt
}

func (h deferHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deferHeap) Push(x interface{}) {
	*h = append(*h, x.(deferItem))
}

func (h *deferHeap) Pop() interface{} {
	var (
		old  = *h
		n    = len(old)
		item = old[n-1]
	)

	*h = old[:n-1]

	return item
}

// deferQueue orders scheduled removals by fire time. A single consumer
// drains it; wake signals the consumer when the head changed.
type deferQueue struct {
	mu    sync.Mutex
	items deferHeap
	wake  chan struct{}
}

func newDeferQueue() *deferQueue {
	return &deferQueue{
		items: deferHeap{},
		wake:  make(chan struct{}, 1),
	}
}

func (q *deferQueue) push(item deferItem) {
	q.mu.Lock()
	heap.Push(&q.items, item)
	head := q.items[0].gen == item.gen
	q.mu.Unlock()

	if head {
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
}

// popDue removes and returns all items with fireAt <= now.
func (q *deferQueue) popDue(now int64) []deferItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []deferItem

	for len(q.items) > 0 && q.items[0].fireAt <= now {
		due = append(due, heap.Pop(&q.items).(deferItem))
	}

	return due
}

// next returns the fire time of the head item.
func (q *deferQueue) next() (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return 0, false
	}

	return q.items[0].fireAt, true
}

func (q *deferQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
