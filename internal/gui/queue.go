// Front ends: display sinks and control surfaces
package gui

import (
	"sync"

	"webcam-tuner/internal/params"
)

// UpdateQueue collects slider changes from UI callbacks until the loop drains
// them. A field changed several times between drains keeps only its last value.
type UpdateQueue struct {
	mu      sync.Mutex
	pending []params.Update
	index   map[params.Field]int
}

func NewUpdateQueue() *UpdateQueue {
	return &UpdateQueue{index: make(map[params.Field]int)}
}

func (q *UpdateQueue) Push(u params.Update) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i, ok := q.index[u.Field]; ok {
		q.pending[i].Raw = u.Raw
		return
	}
	q.index[u.Field] = len(q.pending)
	q.pending = append(q.pending, u)
}

// Drain returns the pending updates in first-change order and empties the queue
func (q *UpdateQueue) Drain() []params.Update {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	q.index = make(map[params.Field]int)
	return out
}
