package invoice

import "time"

// PendingEvent is the immutable fact that an invoice is ready for
// submission. It carries only the identifier; the processor re-fetches the
// current invoice state, so stale data can never propagate through the
// queue.
type PendingEvent struct {
	InvoiceID  int64
	OccurredAt time.Time
}

// NewPendingEvent stamps a pending event for the given invoice.
func NewPendingEvent(invoiceID int64) PendingEvent {
	return PendingEvent{
		InvoiceID:  invoiceID,
		OccurredAt: time.Now(),
	}
}
