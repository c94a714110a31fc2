// Package billing defines the contract with the tax authority's billing
// API. The invoicing services depend on this interface; the afip
// subpackage provides the WSFEv1 implementation.
package billing

import (
	"context"
	"fmt"

	"github.com/afip-einvoicing/internal/domain/invoice"
)

// Authorization is the authority's approval of a submitted voucher.
type Authorization struct {
	VoucherNumber int64
	CAE           string
	CAEExpiry     invoice.Date
}

// VoucherInfo is the authority's record of an already-issued voucher.
type VoucherInfo struct {
	VoucherNumber int64
	CAE           string
	CAEExpiry     invoice.Date
	Result        string
}

// Service is the billing collaborator consumed by the use cases. CreateInvoice
// submits the invoice's current data and returns the authorization, or a
// descriptive error on any transport, protocol, or business failure.
type Service interface {
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) (*Authorization, error)
	GetVoucherInfo(ctx context.Context, pointOfSale, voucherType int, voucherNumber int64) (*VoucherInfo, error)
}

// ErrSubmissionRejected indicates the authority processed the request but
// rejected the voucher.
type ErrSubmissionRejected struct {
	Code    int
	Message string
}

func (e ErrSubmissionRejected) Error() string {
	return fmt.Sprintf("voucher rejected by authority (%d): %s", e.Code, e.Message)
}
