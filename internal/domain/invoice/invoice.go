// Package invoice holds the electronic invoice aggregate and its value
// objects. An invoice is created in draft status, persisted, and later
// transitioned to created or error by the processing service once the tax
// authority accepts or rejects it.
package invoice

import (
	"fmt"
	"time"

	"github.com/afip-einvoicing/internal/domain/money"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusCreated Status = "created"
	StatusError   Status = "error"
)

// Concept codes defined by the authority.
const (
	ConceptGoods            = 1
	ConceptServices         = 2
	ConceptGoodsAndServices = 3
)

// ErrInvalidAmounts indicates the amount-balance invariant does not hold:
// total must equal untaxed + net + exempt + otherTax + vat, exactly.
type ErrInvalidAmounts struct {
	Expected money.Amount
	Received money.Amount
}

func (e ErrInvalidAmounts) Error() string {
	return fmt.Sprintf("invalid total amount: expected %s, received %s", e.Expected, e.Received)
}

// VatItem is a single tax-rate line: a rate category, its taxable base and
// the resulting tax amount, in the authority's decimal representation.
type VatItem struct {
	RateCategoryID int     `json:"rate_category_id"`
	TaxableBase    float64 `json:"taxable_base"`
	TaxAmount      float64 `json:"tax_amount"`
}

// Invoice is the aggregate root. It owns its line items and dates;
// money.Amount and Date fields are value types with no back-reference.
type Invoice struct {
	// ID is assigned by the repository on first save; zero means unassigned.
	ID int64

	PointOfSale            int
	VoucherType            int
	Concept                int
	DocumentType           int
	DocumentNumber         int64
	ReceiverVatConditionID int
	VoucherDate            Date

	Total    money.Amount
	Untaxed  money.Amount
	Net      money.Amount
	Exempt   money.Amount
	OtherTax money.Amount
	Vat      money.Amount

	CurrencyRate float64
	VatItems     []VatItem

	// Service-period dates, required by the authority only for service
	// concepts. The caller is responsible for supplying them; this entity
	// stores whatever it is given.
	ServiceFrom Date
	ServiceTo   Date
	PaymentDue  Date

	// Authorization result, unset until the authority accepts the voucher.
	VoucherNumber int64
	CAE           string
	CAEExpiry     Date

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Params carries the constructor inputs for New.
type Params struct {
	PointOfSale            int
	VoucherType            int
	Concept                int
	DocumentType           int
	DocumentNumber         int64
	ReceiverVatConditionID int
	VoucherDate            Date

	Total    money.Amount
	Untaxed  money.Amount
	Net      money.Amount
	Exempt   money.Amount
	OtherTax money.Amount
	Vat      money.Amount

	CurrencyRate float64
	VatItems     []VatItem

	ServiceFrom Date
	ServiceTo   Date
	PaymentDue  Date
}

// New builds a draft invoice, enforcing the amount-balance invariant:
// total = untaxed + net + exempt + otherTax + vat in exact minor units.
// The invariant is checked once here and never revisited.
func New(p Params) (*Invoice, error) {
	calculated, err := sumAmounts(p.Untaxed, p.Net, p.Exempt, p.OtherTax, p.Vat)
	if err != nil {
		return nil, err
	}
	if !calculated.Equals(p.Total) {
		return nil, ErrInvalidAmounts{Expected: calculated, Received: p.Total}
	}

	now := time.Now()
	return &Invoice{
		PointOfSale:            p.PointOfSale,
		VoucherType:            p.VoucherType,
		Concept:                p.Concept,
		DocumentType:           p.DocumentType,
		DocumentNumber:         p.DocumentNumber,
		ReceiverVatConditionID: p.ReceiverVatConditionID,
		VoucherDate:            p.VoucherDate,
		Total:                  p.Total,
		Untaxed:                p.Untaxed,
		Net:                    p.Net,
		Exempt:                 p.Exempt,
		OtherTax:               p.OtherTax,
		Vat:                    p.Vat,
		CurrencyRate:           p.CurrencyRate,
		VatItems:               p.VatItems,
		ServiceFrom:            p.ServiceFrom,
		ServiceTo:              p.ServiceTo,
		PaymentDue:             p.PaymentDue,
		Status:                 StatusDraft,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

func sumAmounts(amounts ...money.Amount) (money.Amount, error) {
	sum := amounts[0]
	var err error
	for _, a := range amounts[1:] {
		sum, err = sum.Add(a)
		if err != nil {
			return money.Amount{}, err
		}
	}
	return sum, nil
}

// Currency returns the ISO code shared by the invoice amounts.
func (i *Invoice) Currency() string {
	return i.Total.Currency()
}

// RequiresServiceDates reports whether the concept involves services, in
// which case the authority expects a billing period.
func (i *Invoice) RequiresServiceDates() bool {
	return i.Concept == ConceptServices || i.Concept == ConceptGoodsAndServices
}

// MarkAsCreated records the authority's authorization result and moves the
// invoice to its terminal success state.
func (i *Invoice) MarkAsCreated(voucherNumber int64, cae string, caeExpiry Date) {
	i.VoucherNumber = voucherNumber
	i.CAE = cae
	i.CAEExpiry = caeExpiry
	i.Status = StatusCreated
	i.UpdatedAt = time.Now()
}

// MarkAsFailed moves the invoice to its terminal failure state. The reason
// is logged by the caller, not stored on the entity.
func (i *Invoice) MarkAsFailed(reason string) {
	i.Status = StatusError
	i.UpdatedAt = time.Now()
}

// AssignID sets the repository-generated identifier. Only the repository
// calls this, on first save; an already-assigned identifier is kept.
func (i *Invoice) AssignID(id int64) {
	if i.ID == 0 {
		i.ID = id
	}
}
