package memory

import (
	"context"
	"testing"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()
	date, err := invoice.DateFromISO("2026-01-15")
	require.NoError(t, err)

	inv, err := invoice.New(invoice.Params{
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
	})
	require.NoError(t, err)
	return inv
}

func TestInvoiceRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository()

	t.Run("SaveAssignsSequentialIDs", func(t *testing.T) {
		first := newDraftInvoice(t)
		second := newDraftInvoice(t)

		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
	})

	t.Run("FindByIDReturnsCopy", func(t *testing.T) {
		found, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), found.ID)

		// Mutating the returned value must not change the stored one.
		found.Status = invoice.StatusError
		again, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusDraft, again.Status)
	})

	t.Run("FindByIDNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 404)
		require.Error(t, err)
		var notFound invoice.ErrInvoiceNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(404), notFound.ID)
	})
}

func TestInvoiceRepository_FindPending(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository()

	first := newDraftInvoice(t)
	second := newDraftInvoice(t)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	expiry, err := invoice.DateFromCompact("20260210")
	require.NoError(t, err)
	first.MarkAsCreated(42, "71234567890123", expiry)
	require.NoError(t, repo.Save(ctx, first))

	pending, err := repo.FindPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}
