package render

import "sync"

// Queue is the shared sink between scan loops and the renderer. Producers
// append; one consumer takes everything with Swap.
type Queue struct {
	mu    sync.Mutex
	items []DrawInstruction
}

func NewQueue(capacity int) *Queue {
	return &Queue{items: make([]DrawInstruction, 0, capacity)}
}

func (q *Queue) Push(d DrawInstruction) {
	q.mu.Lock()
	q.items = append(q.items, d)
	q.mu.Unlock()
}

// Swap hands the pending instructions to the caller and takes dst, emptied,
// as the new backing buffer. Callers alternate two buffers so neither side
// allocates in steady state.
func (q *Queue) Swap(dst []DrawInstruction) []DrawInstruction {
	dst = dst[:0]

	q.mu.Lock()
	out := q.items
	q.items = dst
	q.mu.Unlock()

	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
