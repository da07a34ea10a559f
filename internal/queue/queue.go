package queue

import (
	"container/heap"

	"github.com/malbiruk/artistpath/model"
)

// Item is a pending node in the relaxation frontier.
type Item struct {
	Node model.ArtistID // Node is the artist waiting to be finalized.
	Ref  uint32         // Ref is the dense record index of the node.
	Cost float64        // Cost is the cumulative -log(similarity) so far.
	Hops int            // Hops breaks cost ties in favor of shorter paths.
}

// CostQueue is a min-heap of Items ordered by cost, then hop count, then
// lexicographic artist id. The id tie-break makes pop order deterministic
// for identical inputs.
type CostQueue struct {
	items costHeap
}

// NewCostQueue creates a queue with the given initial capacity.
func NewCostQueue(capacity int) *CostQueue {
	q := &CostQueue{}
	q.items = make(costHeap, 0, capacity)
	return q
}

// Len returns the number of pending items.
func (q *CostQueue) Len() int { return len(q.items) }

// Push adds an item to the queue.
func (q *CostQueue) Push(item Item) {
	heap.Push(&q.items, item)
}

// Pop removes and returns the cheapest item. It panics on an empty queue;
// callers check Len first.
func (q *CostQueue) Pop() Item {
	return heap.Pop(&q.items).(Item)
}

// Reset empties the queue without freeing its backing array.
func (q *CostQueue) Reset() {
	q.items = q.items[:0]
}

// costHeap implements heap.Interface.
type costHeap []Item

// Compile time check to ensure costHeap satisfies the heap interface.
var _ heap.Interface = (*costHeap)(nil)

func (h costHeap) Len() int { return len(h) }

func (h costHeap) Less(i, j int) bool {
	if h[i].Cost != h[j].Cost {
		return h[i].Cost < h[j].Cost
	}
	if h[i].Hops != h[j].Hops {
		return h[i].Hops < h[j].Hops
	}
	return h[i].Node.Compare(h[j].Node) < 0
}

func (h costHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *costHeap) Push(x any) {
	*h = append(*h, x.(Item))
}

func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
