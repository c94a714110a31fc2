package service

import (
	"context"
	"errors"
	"testing"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/submission"
	"github.com/afip-einvoicing/internal/lock"
	"github.com/afip-einvoicing/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthorization(t *testing.T, voucherNumber int64) *billing.Authorization {
	t.Helper()
	expiry, err := invoice.DateFromCompact("20260210")
	require.NoError(t, err)
	return &billing.Authorization{
		VoucherNumber: voucherNumber,
		CAE:           "71234567890123",
		CAEExpiry:     expiry,
	}
}

func newDraftInvoice(t *testing.T, id int64) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.New(validParams(t))
	require.NoError(t, err)
	inv.AssignID(id)
	return inv
}

func TestProcessServiceImpl_SubmitInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("Authorized", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		mockSubmissions := new(MockSubmissionRepository)
		mockBilling := new(MockBillingService)
		svc := NewProcessService(mockRepo, mockSubmissions, mockBilling, queue.NewInMemory(), lock.New(), nil, testLogger())

		inv := newDraftInvoice(t, 1)
		mockRepo.On("FindByID", ctx, int64(1)).Return(inv, nil).Once()
		mockBilling.On("CreateInvoice", ctx, inv).Return(newAuthorization(t, 42), nil).Once()
		mockRepo.On("Save", ctx, inv).Return(nil).Once()
		mockSubmissions.On("Create", ctx, mock.MatchedBy(func(r *submission.Record) bool {
			return r.InvoiceID == 1 && r.Result == submission.ResultSuccess && r.VoucherNumber == 42
		})).Return(nil).Once()

		err := svc.SubmitInvoice(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, invoice.StatusCreated, inv.Status)
		assert.Equal(t, int64(42), inv.VoucherNumber)
		assert.Equal(t, "71234567890123", inv.CAE)
		mockRepo.AssertExpectations(t)
		mockSubmissions.AssertExpectations(t)
		mockBilling.AssertExpectations(t)
	})

	t.Run("RejectedMarksFailedAndReturnsError", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		mockSubmissions := new(MockSubmissionRepository)
		mockBilling := new(MockBillingService)
		svc := NewProcessService(mockRepo, mockSubmissions, mockBilling, queue.NewInMemory(), lock.New(), nil, testLogger())

		inv := newDraftInvoice(t, 2)
		rejection := billing.ErrSubmissionRejected{Code: 10016, Message: "Fecha del comprobante fuera de rango"}
		mockRepo.On("FindByID", ctx, int64(2)).Return(inv, nil).Once()
		mockBilling.On("CreateInvoice", ctx, inv).Return(nil, rejection).Once()
		mockRepo.On("Save", ctx, inv).Return(nil).Once()
		mockSubmissions.On("Create", ctx, mock.MatchedBy(func(r *submission.Record) bool {
			return r.InvoiceID == 2 && r.Result == submission.ResultFailed && r.FailureReason != ""
		})).Return(nil).Once()

		err := svc.SubmitInvoice(ctx, 2)

		require.Error(t, err)
		var rejected billing.ErrSubmissionRejected
		assert.ErrorAs(t, err, &rejected)
		assert.Equal(t, invoice.StatusError, inv.Status)
		assert.Empty(t, inv.CAE)
		mockRepo.AssertExpectations(t)
		mockSubmissions.AssertExpectations(t)
	})

	t.Run("AuditFailureDoesNotFailSubmission", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		mockSubmissions := new(MockSubmissionRepository)
		mockBilling := new(MockBillingService)
		svc := NewProcessService(mockRepo, mockSubmissions, mockBilling, queue.NewInMemory(), lock.New(), nil, testLogger())

		inv := newDraftInvoice(t, 3)
		mockRepo.On("FindByID", ctx, int64(3)).Return(inv, nil).Once()
		mockBilling.On("CreateInvoice", ctx, inv).Return(newAuthorization(t, 10), nil).Once()
		mockRepo.On("Save", ctx, inv).Return(nil).Once()
		mockSubmissions.On("Create", ctx, mock.Anything).Return(errors.New("mongo down")).Once()

		err := svc.SubmitInvoice(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, invoice.StatusCreated, inv.Status)
	})
}

func TestProcessServiceImpl_DrainQueue(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*MockInvoiceRepository, *MockSubmissionRepository, *MockBillingService, *queue.InMemory, *lock.DrainLock, ProcessService) {
		t.Helper()
		mockRepo := new(MockInvoiceRepository)
		mockSubmissions := new(MockSubmissionRepository)
		mockBilling := new(MockBillingService)
		q := queue.NewInMemory()
		l := lock.New()
		svc := NewProcessService(mockRepo, mockSubmissions, mockBilling, q, l, nil, testLogger())
		return mockRepo, mockSubmissions, mockBilling, q, l, svc
	}

	t.Run("ProcessesAllQueuedEvents", func(t *testing.T) {
		mockRepo, mockSubmissions, mockBilling, q, _, svc := setup(t)

		for id := int64(1); id <= 3; id++ {
			inv := newDraftInvoice(t, id)
			q.Enqueue(invoice.NewPendingEvent(id))
			mockRepo.On("FindByID", ctx, id).Return(inv, nil).Once()
			mockBilling.On("CreateInvoice", ctx, inv).Return(newAuthorization(t, 40+id), nil).Once()
			mockRepo.On("Save", ctx, inv).Return(nil).Once()
		}
		mockSubmissions.On("Create", ctx, mock.Anything).Return(nil).Times(3)

		processed, err := svc.DrainQueue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, processed)
		assert.Equal(t, 0, q.Size())
		mockRepo.AssertExpectations(t)
		mockBilling.AssertExpectations(t)
	})

	t.Run("ReturnsZeroWhenLockHeld", func(t *testing.T) {
		_, _, _, q, l, svc := setup(t)

		q.Enqueue(invoice.NewPendingEvent(1))
		require.True(t, l.TryAcquire())
		defer l.Release()

		processed, err := svc.DrainQueue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, processed)
		// The event stays queued for the drain that holds the lock.
		assert.Equal(t, 1, q.Size())
	})

	t.Run("SkipsEventsForMissingInvoices", func(t *testing.T) {
		mockRepo, mockSubmissions, mockBilling, q, _, svc := setup(t)

		q.Enqueue(invoice.NewPendingEvent(99))
		q.Enqueue(invoice.NewPendingEvent(1))

		inv := newDraftInvoice(t, 1)
		mockRepo.On("FindByID", ctx, int64(99)).Return(nil, invoice.ErrInvoiceNotFound{ID: 99}).Once()
		mockRepo.On("FindByID", ctx, int64(1)).Return(inv, nil).Once()
		mockBilling.On("CreateInvoice", ctx, inv).Return(newAuthorization(t, 42), nil).Once()
		mockRepo.On("Save", ctx, inv).Return(nil).Once()
		mockSubmissions.On("Create", ctx, mock.Anything).Return(nil).Once()

		processed, err := svc.DrainQueue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		mockRepo.AssertExpectations(t)
	})

	t.Run("BillingFailureIsIsolatedToItsEvent", func(t *testing.T) {
		mockRepo, mockSubmissions, mockBilling, q, _, svc := setup(t)

		failing := newDraftInvoice(t, 1)
		succeeding := newDraftInvoice(t, 2)
		q.Enqueue(invoice.NewPendingEvent(1))
		q.Enqueue(invoice.NewPendingEvent(2))

		mockRepo.On("FindByID", ctx, int64(1)).Return(failing, nil).Once()
		mockBilling.On("CreateInvoice", ctx, failing).
			Return(nil, billing.ErrSubmissionRejected{Code: 10016, Message: "rechazado"}).Once()
		mockRepo.On("Save", ctx, failing).Return(nil).Once()

		mockRepo.On("FindByID", ctx, int64(2)).Return(succeeding, nil).Once()
		mockBilling.On("CreateInvoice", ctx, succeeding).Return(newAuthorization(t, 42), nil).Once()
		mockRepo.On("Save", ctx, succeeding).Return(nil).Once()

		mockSubmissions.On("Create", ctx, mock.Anything).Return(nil).Times(2)

		processed, err := svc.DrainQueue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		assert.Equal(t, invoice.StatusError, failing.Status)
		assert.Equal(t, invoice.StatusCreated, succeeding.Status)
	})

	t.Run("StoreFailureStopsTheDrain", func(t *testing.T) {
		mockRepo, _, _, q, _, svc := setup(t)

		q.Enqueue(invoice.NewPendingEvent(1))
		q.Enqueue(invoice.NewPendingEvent(2))

		storeError := errors.New("connection reset")
		mockRepo.On("FindByID", ctx, int64(1)).Return(nil, storeError).Once()

		processed, err := svc.DrainQueue(ctx)

		require.Error(t, err)
		assert.Equal(t, 0, processed)
		assert.Equal(t, storeError, err)
		// The second event was never dequeued.
		assert.Equal(t, 1, q.Size())
	})

	t.Run("SaveFailureAfterAuthorizationStopsTheDrain", func(t *testing.T) {
		mockRepo, _, mockBilling, q, _, svc := setup(t)

		inv := newDraftInvoice(t, 1)
		q.Enqueue(invoice.NewPendingEvent(1))

		mockRepo.On("FindByID", ctx, int64(1)).Return(inv, nil).Once()
		mockBilling.On("CreateInvoice", ctx, inv).Return(newAuthorization(t, 42), nil).Once()
		mockRepo.On("Save", ctx, inv).Return(errors.New("write failed")).Once()

		processed, err := svc.DrainQueue(ctx)

		require.Error(t, err)
		assert.Equal(t, 0, processed)
	})

	t.Run("ReleasesLockAfterDrain", func(t *testing.T) {
		_, _, _, _, l, svc := setup(t)

		processed, err := svc.DrainQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, processed)

		assert.True(t, l.TryAcquire())
		l.Release()
	})

	t.Run("ReleasesLockAfterStoreFailure", func(t *testing.T) {
		mockRepo, _, _, q, l, svc := setup(t)

		q.Enqueue(invoice.NewPendingEvent(1))
		mockRepo.On("FindByID", ctx, int64(1)).Return(nil, errors.New("boom")).Once()

		_, err := svc.DrainQueue(ctx)
		require.Error(t, err)

		assert.True(t, l.TryAcquire())
		l.Release()
	})
}

func TestProcessServiceImpl_QueueSize(t *testing.T) {
	q := queue.NewInMemory()
	svc := NewProcessService(new(MockInvoiceRepository), new(MockSubmissionRepository), new(MockBillingService), q, lock.New(), nil, testLogger())

	assert.Equal(t, 0, svc.QueueSize())
	q.Enqueue(invoice.NewPendingEvent(1))
	assert.Equal(t, 1, svc.QueueSize())
}

func TestProcessServiceImpl_ListSubmissions(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsAuditTrail", func(t *testing.T) {
		mockSubmissions := new(MockSubmissionRepository)
		svc := NewProcessService(new(MockInvoiceRepository), mockSubmissions, new(MockBillingService), queue.NewInMemory(), lock.New(), nil, testLogger())

		records := []*submission.Record{
			{InvoiceID: 7, Result: submission.ResultFailed, FailureReason: "rejected"},
			{InvoiceID: 7, Result: submission.ResultSuccess, VoucherNumber: 42},
		}
		mockSubmissions.On("FindByInvoiceID", ctx, int64(7)).Return(records, nil).Once()

		got, err := svc.ListSubmissions(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, records, got)
		mockSubmissions.AssertExpectations(t)
	})

	t.Run("NoRecords", func(t *testing.T) {
		mockSubmissions := new(MockSubmissionRepository)
		svc := NewProcessService(new(MockInvoiceRepository), mockSubmissions, new(MockBillingService), queue.NewInMemory(), lock.New(), nil, testLogger())

		mockSubmissions.On("FindByInvoiceID", ctx, int64(9)).
			Return(nil, submission.ErrNoRecords{InvoiceID: 9}).Once()

		_, err := svc.ListSubmissions(ctx, 9)

		var noRecords submission.ErrNoRecords
		require.ErrorAs(t, err, &noRecords)
		assert.Equal(t, int64(9), noRecords.InvoiceID)
	})
}
