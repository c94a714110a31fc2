package handler

import (
	"errors"
	"fmt"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/money"
)

// allowedVoucherTypes are the authority voucher type codes accepted for
// electronic invoicing: invoices, debit and credit notes of classes A and B,
// and receipts.
var allowedVoucherTypes = map[int]bool{
	1: true, 2: true, 3: true,
	6: true, 7: true, 8: true,
	9: true,
}

// VatItemRequest is one tax-rate line of a create request
type VatItemRequest struct {
	RateCategoryID int     `json:"rate_category_id" binding:"required"`
	TaxableBase    float64 `json:"taxable_base"`
	TaxAmount      float64 `json:"tax_amount"`
}

// CreateInvoiceRequest represents a request to create a new invoice draft
type CreateInvoiceRequest struct {
	PointOfSale            int     `json:"point_of_sale" binding:"required"`
	VoucherType            int     `json:"voucher_type" binding:"required"`
	Concept                int     `json:"concept" binding:"required"`
	DocumentType           int     `json:"document_type" binding:"required"`
	DocumentNumber         int64   `json:"document_number" binding:"required"`
	ReceiverVatConditionID int     `json:"receiver_vat_condition_id" binding:"required"`
	VoucherDate            string  `json:"voucher_date" binding:"required"`
	Currency               string  `json:"currency" binding:"required,len=3"`
	CurrencyRate           float64 `json:"currency_rate" binding:"required,gt=0"`

	Total    float64 `json:"total" binding:"required,gt=0"`
	Untaxed  float64 `json:"untaxed" binding:"min=0"`
	Net      float64 `json:"net" binding:"min=0"`
	Exempt   float64 `json:"exempt" binding:"min=0"`
	OtherTax float64 `json:"other_tax" binding:"min=0"`
	Vat      float64 `json:"vat" binding:"min=0"`

	VatItems []VatItemRequest `json:"vat_items"`

	ServiceFrom string `json:"service_from,omitempty"`
	ServiceTo   string `json:"service_to,omitempty"`
	PaymentDue  string `json:"payment_due,omitempty"`
}

// Validate applies the cross-field rules gin's binding tags cannot express
func (r *CreateInvoiceRequest) Validate() error {
	if r.PointOfSale < 1 || r.PointOfSale > 99999 {
		return fmt.Errorf("point_of_sale must be between 1 and 99999")
	}
	if !allowedVoucherTypes[r.VoucherType] {
		return fmt.Errorf("voucher_type %d is not supported", r.VoucherType)
	}
	if r.Concept < invoice.ConceptGoods || r.Concept > invoice.ConceptGoodsAndServices {
		return fmt.Errorf("concept must be 1 (goods), 2 (services) or 3 (goods and services)")
	}
	if r.Concept != invoice.ConceptGoods {
		if r.ServiceFrom == "" || r.ServiceTo == "" || r.PaymentDue == "" {
			return errors.New("service_from, service_to and payment_due are required for service concepts")
		}
	}
	return nil
}

// ToParams converts the request to constructor params. Dates are parsed
// here so the domain only ever sees valid values.
func (r *CreateInvoiceRequest) ToParams() (invoice.Params, error) {
	voucherDate, err := invoice.DateFromISO(r.VoucherDate)
	if err != nil {
		return invoice.Params{}, fmt.Errorf("voucher_date: %w", err)
	}

	params := invoice.Params{
		PointOfSale:            r.PointOfSale,
		VoucherType:            r.VoucherType,
		Concept:                r.Concept,
		DocumentType:           r.DocumentType,
		DocumentNumber:         r.DocumentNumber,
		ReceiverVatConditionID: r.ReceiverVatConditionID,
		VoucherDate:            voucherDate,
		Total:                  money.FromDecimal(r.Total, r.Currency),
		Untaxed:                money.FromDecimal(r.Untaxed, r.Currency),
		Net:                    money.FromDecimal(r.Net, r.Currency),
		Exempt:                 money.FromDecimal(r.Exempt, r.Currency),
		OtherTax:               money.FromDecimal(r.OtherTax, r.Currency),
		Vat:                    money.FromDecimal(r.Vat, r.Currency),
		CurrencyRate:           r.CurrencyRate,
	}

	for _, item := range r.VatItems {
		params.VatItems = append(params.VatItems, invoice.VatItem{
			RateCategoryID: item.RateCategoryID,
			TaxableBase:    item.TaxableBase,
			TaxAmount:      item.TaxAmount,
		})
	}

	if r.ServiceFrom != "" {
		if params.ServiceFrom, err = invoice.DateFromISO(r.ServiceFrom); err != nil {
			return invoice.Params{}, fmt.Errorf("service_from: %w", err)
		}
	}
	if r.ServiceTo != "" {
		if params.ServiceTo, err = invoice.DateFromISO(r.ServiceTo); err != nil {
			return invoice.Params{}, fmt.Errorf("service_to: %w", err)
		}
	}
	if r.PaymentDue != "" {
		if params.PaymentDue, err = invoice.DateFromISO(r.PaymentDue); err != nil {
			return invoice.Params{}, fmt.Errorf("payment_due: %w", err)
		}
	}

	return params, nil
}

// VatItemResponse is one tax-rate line in API responses
type VatItemResponse struct {
	RateCategoryID int     `json:"rate_category_id"`
	TaxableBase    float64 `json:"taxable_base"`
	TaxAmount      float64 `json:"tax_amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                     int64   `json:"id"`
	PointOfSale            int     `json:"point_of_sale"`
	VoucherType            int     `json:"voucher_type"`
	Concept                int     `json:"concept"`
	DocumentType           int     `json:"document_type"`
	DocumentNumber         int64   `json:"document_number"`
	ReceiverVatConditionID int     `json:"receiver_vat_condition_id"`
	VoucherDate            string  `json:"voucher_date"`
	Currency               string  `json:"currency"`
	CurrencyRate           float64 `json:"currency_rate"`

	Total    float64 `json:"total"`
	Untaxed  float64 `json:"untaxed"`
	Net      float64 `json:"net"`
	Exempt   float64 `json:"exempt"`
	OtherTax float64 `json:"other_tax"`
	Vat      float64 `json:"vat"`

	VatItems []VatItemResponse `json:"vat_items,omitempty"`

	ServiceFrom string `json:"service_from,omitempty"`
	ServiceTo   string `json:"service_to,omitempty"`
	PaymentDue  string `json:"payment_due,omitempty"`

	VoucherNumber int64  `json:"voucher_number,omitempty"`
	CAE           string `json:"cae,omitempty"`
	CAEExpiry     string `json:"cae_expiry,omitempty"`

	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// InvoiceListResponse represents a list of invoices in API responses
type InvoiceListResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
}

// DrainResponse reports the outcome of a queue drain
type DrainResponse struct {
	Processed int `json:"processed"`
}

// QueueStatusResponse reports the current queue depth
type QueueStatusResponse struct {
	Size int `json:"size"`
}

// SubmissionRecordResponse is one audit-trail entry in API responses
type SubmissionRecordResponse struct {
	InvoiceID     int64  `json:"invoice_id"`
	PointOfSale   int    `json:"point_of_sale"`
	VoucherType   int    `json:"voucher_type"`
	VoucherNumber int64  `json:"voucher_number,omitempty"`
	CAE           string `json:"cae,omitempty"`
	Result        string `json:"result"`
	FailureReason string `json:"failure_reason,omitempty"`
	SubmittedAt   string `json:"submitted_at"`
}

// SubmissionListResponse represents an invoice's submission audit trail
type SubmissionListResponse struct {
	Submissions []SubmissionRecordResponse `json:"submissions"`
}

// VoucherInfoResponse represents an authority voucher lookup result
type VoucherInfoResponse struct {
	VoucherNumber int64  `json:"voucher_number"`
	CAE           string `json:"cae,omitempty"`
	CAEExpiry     string `json:"cae_expiry,omitempty"`
	Result        string `json:"result"`
}
