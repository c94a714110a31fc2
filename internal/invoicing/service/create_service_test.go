package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func validParams(t *testing.T) invoice.Params {
	t.Helper()
	date, err := invoice.DateFromISO("2026-01-15")
	require.NoError(t, err)

	return invoice.Params{
		PointOfSale:            1,
		VoucherType:            6,
		Concept:                invoice.ConceptGoods,
		DocumentType:           96,
		DocumentNumber:         12345678,
		ReceiverVatConditionID: 5,
		VoucherDate:            date,
		Total:                  money.FromDecimal(121, "ARS"),
		Untaxed:                money.Zero("ARS"),
		Net:                    money.FromDecimal(100, "ARS"),
		Exempt:                 money.Zero("ARS"),
		OtherTax:               money.Zero("ARS"),
		Vat:                    money.FromDecimal(21, "ARS"),
		CurrencyRate:           1,
		VatItems: []invoice.VatItem{
			{RateCategoryID: 5, TaxableBase: 100, TaxAmount: 21},
		},
	}
}

func TestCreateServiceImpl_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		mockQueue := new(MockEventQueue)
		svc := NewCreateService(mockRepo, mockQueue, nil, testLogger())

		mockRepo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*invoice.Invoice).AssignID(7)
			}).
			Return(nil).Once()
		mockQueue.On("Enqueue", mock.MatchedBy(func(event invoice.PendingEvent) bool {
			return event.InvoiceID == 7
		})).Once()

		inv, err := svc.CreateInvoice(ctx, validParams(t))

		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, int64(7), inv.ID)
		assert.Equal(t, invoice.StatusDraft, inv.Status)
		mockRepo.AssertExpectations(t)
		mockQueue.AssertExpectations(t)
		mockQueue.AssertNumberOfCalls(t, "Enqueue", 1)
	})

	t.Run("UnbalancedAmounts", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		mockQueue := new(MockEventQueue)
		svc := NewCreateService(mockRepo, mockQueue, nil, testLogger())

		params := validParams(t)
		params.Total = money.FromDecimal(120, "ARS")

		inv, err := svc.CreateInvoice(ctx, params)

		require.Error(t, err)
		assert.Nil(t, inv)
		var invalidAmounts invoice.ErrInvalidAmounts
		assert.ErrorAs(t, err, &invalidAmounts)
		mockRepo.AssertNotCalled(t, "Save", ctx, mock.Anything)
		mockQueue.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("RepositorySaveError", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		mockQueue := new(MockEventQueue)
		svc := NewCreateService(mockRepo, mockQueue, nil, testLogger())

		repoError := errors.New("database error")
		mockRepo.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(repoError).Once()

		inv, err := svc.CreateInvoice(ctx, validParams(t))

		require.Error(t, err)
		assert.Nil(t, inv)
		assert.Equal(t, repoError, err)
		// No event may exist for an invoice that was never stored.
		mockQueue.AssertNotCalled(t, "Enqueue", mock.Anything)
		mockRepo.AssertExpectations(t)
	})
}

func TestCreateServiceImpl_GetInvoiceByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		svc := NewCreateService(mockRepo, new(MockEventQueue), nil, testLogger())

		expected, err := invoice.New(validParams(t))
		require.NoError(t, err)
		expected.AssignID(3)

		mockRepo.On("FindByID", ctx, int64(3)).Return(expected, nil).Once()

		inv, err := svc.GetInvoiceByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, expected, inv)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockInvoiceRepository)
		svc := NewCreateService(mockRepo, new(MockEventQueue), nil, testLogger())

		mockRepo.On("FindByID", ctx, int64(99)).Return(nil, invoice.ErrInvoiceNotFound{ID: 99}).Once()

		inv, err := svc.GetInvoiceByID(ctx, 99)
		require.Error(t, err)
		assert.Nil(t, inv)
		var notFound invoice.ErrInvoiceNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(99), notFound.ID)
	})
}

func TestCreateServiceImpl_ListPendingInvoices(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockInvoiceRepository)
	svc := NewCreateService(mockRepo, new(MockEventQueue), nil, testLogger())

	first, err := invoice.New(validParams(t))
	require.NoError(t, err)
	second, err := invoice.New(validParams(t))
	require.NoError(t, err)

	mockRepo.On("FindPending", ctx).Return([]*invoice.Invoice{first, second}, nil).Once()

	pending, err := svc.ListPendingInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	mockRepo.AssertExpectations(t)
}
