// Package pqueue is a small generic min-priority queue built on
// container/heap, matching the Push(item, priority)/Pop/PeekPriority/Len
// contract exercised by fw/utils/priority_queue's test suite. digestcache
// uses it to track expiration deadlines for cached packet digests.
package pqueue

import "container/heap"

type item[K any, P Ordered] struct {
	value    K
	priority P
}

// Ordered is any type container/heap can compare with <.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

type innerHeap[K any, P Ordered] []item[K, P]

func (h innerHeap[K, P]) Len() int            { return len(h) }
func (h innerHeap[K, P]) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h innerHeap[K, P]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *innerHeap[K, P]) Push(x interface{}) { *h = append(*h, x.(item[K, P])) }
func (h *innerHeap[K, P]) Pop() interface{} {
	old := *h
	n := len(old)
	popped := old[n-1]
	*h = old[:n-1]
	return popped
}

// Queue is a min-priority queue: Pop always returns the value with the
// smallest priority currently enqueued.
type Queue[K any, P Ordered] struct {
	h innerHeap[K, P]
}

// New returns an empty Queue.
func New[K any, P Ordered]() Queue[K, P] {
	return Queue[K, P]{h: innerHeap[K, P]{}}
}

// Len returns the number of items in the queue.
func (q *Queue[K, P]) Len() int { return q.h.Len() }

// Push inserts value with the given priority.
func (q *Queue[K, P]) Push(value K, priority P) {
	heap.Push(&q.h, item[K, P]{value: value, priority: priority})
}

// Pop removes and returns the value with the smallest priority. It
// panics if the queue is empty, matching the pack's contract of only
// ever being called after checking Len.
func (q *Queue[K, P]) Pop() K {
	return heap.Pop(&q.h).(item[K, P]).value
}

// PeekPriority returns the smallest priority currently in the queue,
// without removing it. It panics if the queue is empty.
func (q *Queue[K, P]) PeekPriority() P {
	return q.h[0].priority
}
