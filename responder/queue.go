package responder

import "sync"

// fragmentQueue is an unbounded, order-preserving buffer of incoming text
// fragments. Push never blocks and is safe to call while the batching loop
// is draining; DrainAll atomically removes and returns every queued fragment.
// The queue imposes no back-pressure - that is the producer's own concern.
type fragmentQueue struct {
	mu    sync.Mutex
	items []string
}

// Push appends a fragment to the tail.
func (q *fragmentQueue) Push(fragment string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, fragment)
}

// DrainAll removes and returns every fragment currently queued (may be nil).
func (q *fragmentQueue) DrainAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len reports the number of queued fragments.
func (q *fragmentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
