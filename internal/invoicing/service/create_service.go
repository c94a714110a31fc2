package service

import (
	"context"
	"log/slog"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/observability/metrics"
)

// CreateServiceImpl implements the CreateService interface
type CreateServiceImpl struct {
	invoiceRepo invoice.Repository
	queue       EventQueue
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewCreateService creates a new invoice intake service
func NewCreateService(
	invoiceRepo invoice.Repository,
	queue EventQueue,
	m *metrics.Metrics,
	logger *slog.Logger,
) CreateService {
	return &CreateServiceImpl{
		invoiceRepo: invoiceRepo,
		queue:       queue,
		metrics:     m,
		logger:      logger,
	}
}

// CreateInvoice validates the draft, persists it and enqueues one pending
// submission event. The event is only published after the draft is stored,
// so a drain can never observe an event without its invoice.
func (s *CreateServiceImpl) CreateInvoice(ctx context.Context, params invoice.Params) (*invoice.Invoice, error) {
	inv, err := invoice.New(params)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.queue.Enqueue(invoice.NewPendingEvent(inv.ID))
	s.metrics.IncInvoicesCreated()

	s.logger.Info("Invoice draft created and queued",
		"invoice_id", inv.ID,
		"point_of_sale", inv.PointOfSale,
		"voucher_type", inv.VoucherType,
	)

	return inv, nil
}

// GetInvoiceByID retrieves an invoice, returns invoice.ErrInvoiceNotFound if missing
func (s *CreateServiceImpl) GetInvoiceByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// ListPendingInvoices retrieves all invoices still awaiting submission
func (s *CreateServiceImpl) ListPendingInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.invoiceRepo.FindPending(ctx)
}
