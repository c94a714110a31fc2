// Package submission models the audit trail of billing-API submission
// attempts. The invoice entity records only its terminal status; the
// attempt-level detail (who, when, why it failed) lives here.
package submission

import (
	"context"
	"fmt"
	"time"
)

// Result classifies the outcome of one submission attempt.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailed  Result = "FAILED"
)

// Record is one submission attempt against the billing authority.
type Record struct {
	InvoiceID     int64     `bson:"invoice_id" json:"invoice_id"`
	PointOfSale   int       `bson:"point_of_sale" json:"point_of_sale"`
	VoucherType   int       `bson:"voucher_type" json:"voucher_type"`
	VoucherNumber int64     `bson:"voucher_number,omitempty" json:"voucher_number,omitempty"`
	CAE           string    `bson:"cae,omitempty" json:"cae,omitempty"`
	Result        Result    `bson:"result" json:"result"`
	FailureReason string    `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	SubmittedAt   time.Time `bson:"submitted_at" json:"submitted_at"`
}

// Repository defines persistence for the submission audit trail.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByInvoiceID(ctx context.Context, invoiceID int64) ([]*Record, error)
}

// ErrNoRecords indicates no submission attempts exist for an invoice.
type ErrNoRecords struct {
	InvoiceID int64
}

func (e ErrNoRecords) Error() string {
	return fmt.Sprintf("no submission records for invoice: %d", e.InvoiceID)
}
