// Package memory provides an in-process invoice repository used by tests
// and local development, where a database is more setup than signal.
package memory

import (
	"context"
	"sync"

	"github.com/afip-einvoicing/internal/domain/invoice"
)

// InvoiceRepository implements the invoice.Repository interface in memory.
// Identifiers are assigned sequentially starting at 1.
type InvoiceRepository struct {
	mu       sync.Mutex
	nextID   int64
	invoices map[int64]*invoice.Invoice
}

// NewInvoiceRepository creates an empty in-memory invoice repository
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		nextID:   1,
		invoices: make(map[int64]*invoice.Invoice),
	}
}

// Save stores the invoice, assigning an identifier on first save. The
// stored value is a copy so later mutations need another Save.
func (r *InvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inv.ID == 0 {
		inv.AssignID(r.nextID)
		r.nextID++
	}

	stored := *inv
	r.invoices[inv.ID] = &stored
	return nil
}

// FindByID retrieves an invoice, returns invoice.ErrInvoiceNotFound if missing
func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.invoices[id]
	if !ok {
		return nil, invoice.ErrInvoiceNotFound{ID: id}
	}

	found := *stored
	return &found, nil
}

// FindPending retrieves all draft invoices in identifier order
func (r *InvoiceRepository) FindPending(ctx context.Context) ([]*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*invoice.Invoice
	for id := int64(1); id < r.nextID; id++ {
		stored, ok := r.invoices[id]
		if !ok || stored.Status != invoice.StatusDraft {
			continue
		}
		found := *stored
		pending = append(pending, &found)
	}
	return pending, nil
}

var _ invoice.Repository = (*InvoiceRepository)(nil)
