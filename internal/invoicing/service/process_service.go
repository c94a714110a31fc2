package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/submission"
	"github.com/afip-einvoicing/internal/observability/metrics"
)

// persistenceError marks failures that come from the invoice store rather
// than the billing authority. A drain stops on these; billing rejections
// only skip the event that caused them.
type persistenceError struct {
	err error
}

func (e persistenceError) Error() string {
	return fmt.Sprintf("invoice store failure: %v", e.err)
}

func (e persistenceError) Unwrap() error {
	return e.err
}

// ProcessServiceImpl implements the ProcessService interface
type ProcessServiceImpl struct {
	invoiceRepo    invoice.Repository
	submissionRepo submission.Repository
	billingSvc     billing.Service
	queue          EventQueue
	lock           ProcessingLock
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewProcessService creates a new invoice submission service
func NewProcessService(
	invoiceRepo invoice.Repository,
	submissionRepo submission.Repository,
	billingSvc billing.Service,
	queue EventQueue,
	lock ProcessingLock,
	m *metrics.Metrics,
	logger *slog.Logger,
) ProcessService {
	return &ProcessServiceImpl{
		invoiceRepo:    invoiceRepo,
		submissionRepo: submissionRepo,
		billingSvc:     billingSvc,
		queue:          queue,
		lock:           lock,
		metrics:        m,
		logger:         logger,
	}
}

// SubmitInvoice loads the invoice and submits it to the billing authority.
// A rejection marks the invoice as failed, records the failure and then
// returns the rejection to the caller.
func (s *ProcessServiceImpl) SubmitInvoice(ctx context.Context, invoiceID int64) error {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	return s.submit(ctx, inv)
}

// DrainQueue processes queued events one at a time under the processing
// lock. Concurrent drain attempts return immediately with a zero count.
func (s *ProcessServiceImpl) DrainQueue(ctx context.Context) (int, error) {
	if !s.lock.TryAcquire() {
		s.logger.Debug("Drain already in progress, skipping")
		return 0, nil
	}
	defer s.lock.Release()

	s.metrics.IncDrainRuns()

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		event, ok := s.queue.Dequeue()
		if !ok {
			break
		}

		inv, err := s.invoiceRepo.FindByID(ctx, event.InvoiceID)
		if err != nil {
			var notFound invoice.ErrInvoiceNotFound
			if errors.As(err, &notFound) {
				s.logger.Warn("Queued event references missing invoice, skipping",
					"invoice_id", event.InvoiceID,
				)
				continue
			}
			return processed, err
		}

		if err := s.submit(ctx, inv); err != nil {
			var storeErr persistenceError
			if errors.As(err, &storeErr) {
				return processed, err
			}
			// Billing failures are isolated to their event; the drain
			// moves on to the next one.
			s.logger.Error("Invoice submission failed",
				"invoice_id", inv.ID,
				"error", err,
			)
			continue
		}

		processed++
	}

	s.logger.Info("Queue drain finished", "processed", processed)
	return processed, nil
}

// QueueSize reports the number of events currently queued
func (s *ProcessServiceImpl) QueueSize() int {
	return s.queue.Size()
}

// ListSubmissions retrieves the submission audit trail for an invoice
func (s *ProcessServiceImpl) ListSubmissions(ctx context.Context, invoiceID int64) ([]*submission.Record, error) {
	return s.submissionRepo.FindByInvoiceID(ctx, invoiceID)
}

func (s *ProcessServiceImpl) submit(ctx context.Context, inv *invoice.Invoice) error {
	auth, err := s.billingSvc.CreateInvoice(ctx, inv)
	if err != nil {
		inv.MarkAsFailed(err.Error())
		if saveErr := s.invoiceRepo.Save(ctx, inv); saveErr != nil {
			return persistenceError{err: saveErr}
		}
		s.recordSubmission(ctx, inv, submission.ResultFailed, err.Error())
		s.metrics.IncInvoicesFailed()
		return err
	}

	inv.MarkAsCreated(auth.VoucherNumber, auth.CAE, auth.CAEExpiry)
	if saveErr := s.invoiceRepo.Save(ctx, inv); saveErr != nil {
		return persistenceError{err: saveErr}
	}
	s.recordSubmission(ctx, inv, submission.ResultSuccess, "")
	s.metrics.IncInvoicesProcessed()

	s.logger.Info("Invoice authorized",
		"invoice_id", inv.ID,
		"voucher_number", inv.VoucherNumber,
		"cae", inv.CAE,
	)
	return nil
}

// recordSubmission appends to the audit trail. A failing audit write is
// logged but never fails the submission itself.
func (s *ProcessServiceImpl) recordSubmission(ctx context.Context, inv *invoice.Invoice, result submission.Result, reason string) {
	record := &submission.Record{
		InvoiceID:     inv.ID,
		PointOfSale:   inv.PointOfSale,
		VoucherType:   inv.VoucherType,
		VoucherNumber: inv.VoucherNumber,
		CAE:           inv.CAE,
		Result:        result,
		FailureReason: reason,
		SubmittedAt:   time.Now().UTC(),
	}
	if err := s.submissionRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record submission audit entry",
			"invoice_id", inv.ID,
			"error", err,
		)
	}
}
