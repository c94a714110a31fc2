package invoice

import (
	"context"
	"fmt"
)

// Repository defines invoice persistence operations.
type Repository interface {
	// Save persists the invoice's current field values, assigning a
	// monotonically increasing identifier on first save.
	Save(ctx context.Context, inv *Invoice) error

	// FindByID returns ErrInvoiceNotFound if no invoice has the identifier.
	FindByID(ctx context.Context, id int64) (*Invoice, error)

	// FindPending lists invoices still awaiting processing (draft status).
	FindPending(ctx context.Context) ([]*Invoice, error)
}

// ErrInvoiceNotFound indicates a missing invoice.
type ErrInvoiceNotFound struct {
	ID int64
}

func (e ErrInvoiceNotFound) Error() string {
	return fmt.Sprintf("invoice not found: %d", e.ID)
}
