// Package queue provides the in-memory holding area for pending invoice
// events. Ordering is strictly FIFO. The queue is volatile: a process
// crash loses whatever is in flight.
package queue

import (
	"sync"

	"github.com/afip-einvoicing/internal/domain/invoice"
)

// InMemory is a mutex-protected FIFO of pending events, safe for a
// concurrent producer (invoice creation) and consumer (queue drain).
type InMemory struct {
	mu     sync.Mutex
	events []invoice.PendingEvent
}

// NewInMemory returns an empty queue.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Enqueue appends an event to the tail. Never blocks.
func (q *InMemory) Enqueue(event invoice.PendingEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
}

// Dequeue removes and returns the head event. The second return value is
// false when the queue is empty.
func (q *InMemory) Dequeue() (invoice.PendingEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return invoice.PendingEvent{}, false
	}
	head := q.events[0]
	q.events = q.events[1:]
	return head, true
}

// IsEmpty reports whether the queue holds no events.
func (q *InMemory) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) == 0
}

// Size returns the number of queued events.
func (q *InMemory) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
