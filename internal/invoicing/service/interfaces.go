package service

import (
	"context"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/submission"
)

// EventQueue holds pending submission events in arrival order. Events carry
// only the invoice ID; state is read back from the repository at drain time.
type EventQueue interface {
	Enqueue(event invoice.PendingEvent)

	// Dequeue removes and returns the oldest event. The boolean is false
	// when the queue is empty.
	Dequeue() (invoice.PendingEvent, bool)

	Size() int
}

// ProcessingLock guards the drain loop so only one drain runs at a time.
type ProcessingLock interface {
	// TryAcquire attempts to take the lock without blocking.
	TryAcquire() bool

	// Release frees the lock. Releasing an unheld lock is a no-op.
	Release()
}

// CreateService defines the interface for invoice intake operations
type CreateService interface {
	// CreateInvoice persists a new draft invoice and enqueues exactly one
	// pending submission event for it
	CreateInvoice(ctx context.Context, params invoice.Params) (*invoice.Invoice, error)

	// GetInvoiceByID retrieves an invoice by its ID
	// Returns invoice.ErrInvoiceNotFound if the invoice doesn't exist
	GetInvoiceByID(ctx context.Context, id int64) (*invoice.Invoice, error)

	// ListPendingInvoices retrieves all invoices still in draft status
	ListPendingInvoices(ctx context.Context) ([]*invoice.Invoice, error)
}

// ProcessService defines the interface for invoice submission operations
type ProcessService interface {
	// SubmitInvoice submits a single invoice to the billing authority.
	// On rejection the invoice is marked as failed, the failure is
	// recorded, and the original error is returned.
	SubmitInvoice(ctx context.Context, invoiceID int64) error

	// DrainQueue processes every queued event and returns the number of
	// invoices successfully authorized. When another drain holds the
	// lock it returns 0 immediately.
	DrainQueue(ctx context.Context) (int, error)

	// QueueSize reports the number of events currently queued
	QueueSize() int

	// ListSubmissions retrieves the audit trail of submission attempts for
	// an invoice, oldest first. Returns submission.ErrNoRecords when the
	// invoice was never submitted.
	ListSubmissions(ctx context.Context, invoiceID int64) ([]*submission.Record, error)
}

// ValidateService defines the interface for voucher lookups against the
// billing authority
type ValidateService interface {
	// ValidateVoucher fetches authorization details for an issued voucher
	ValidateVoucher(ctx context.Context, pointOfSale, voucherType int, voucherNumber int64) (*billing.VoucherInfo, error)
}
