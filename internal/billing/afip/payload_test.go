package afip

import (
	"testing"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInvoice(t *testing.T, concept int) *invoice.Invoice {
	t.Helper()
	date, err := invoice.DateFromISO("2026-01-15")
	require.NoError(t, err)
	from, err := invoice.DateFromISO("2026-01-01")
	require.NoError(t, err)
	to, err := invoice.DateFromISO("2026-01-31")
	require.NoError(t, err)
	due, err := invoice.DateFromISO("2026-02-10")
	require.NoError(t, err)

	inv, err := invoice.New(invoice.Params{
		PointOfSale:            1,
		VoucherType:            1,
		Concept:                concept,
		DocumentType:           80,
		DocumentNumber:         20123456789,
		ReceiverVatConditionID: 1,
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
		ServiceFrom: from,
		ServiceTo:   to,
		PaymentDue:  due,
	})
	require.NoError(t, err)
	return inv
}

func TestBuildVoucherDetail(t *testing.T) {
	t.Run("BaseFields", func(t *testing.T) {
		inv := buildInvoice(t, invoice.ConceptGoods)
		detail := buildVoucherDetail(inv, 42)

		assert.Equal(t, 1, detail.Concepto)
		assert.Equal(t, 80, detail.DocTipo)
		assert.Equal(t, int64(20123456789), detail.DocNro)
		assert.Equal(t, int64(42), detail.CbteDesde)
		assert.Equal(t, int64(42), detail.CbteHasta)
		assert.Equal(t, "20260115", detail.CbteFch)
		assert.Equal(t, 121.00, detail.ImpTotal)
		assert.Equal(t, 0.00, detail.ImpTotConc)
		assert.Equal(t, 100.00, detail.ImpNeto)
		assert.Equal(t, 0.00, detail.ImpOpEx)
		assert.Equal(t, 0.00, detail.ImpTrib)
		assert.Equal(t, 21.00, detail.ImpIVA)
		assert.Equal(t, 1.0, detail.MonCotiz)
		assert.Equal(t, 1, detail.CondicionIVAReceptorId)
	})

	t.Run("VatItems", func(t *testing.T) {
		inv := buildInvoice(t, invoice.ConceptGoods)
		detail := buildVoucherDetail(inv, 1)

		require.NotNil(t, detail.Iva)
		require.Len(t, detail.Iva.Items, 1)
		assert.Equal(t, 5, detail.Iva.Items[0].Id)
		assert.Equal(t, 100.00, detail.Iva.Items[0].BaseImp)
		assert.Equal(t, 21.00, detail.Iva.Items[0].Importe)
	})

	t.Run("CurrencyMappedToAuthorityCode", func(t *testing.T) {
		inv := buildInvoice(t, invoice.ConceptGoods)
		detail := buildVoucherDetail(inv, 1)
		assert.Equal(t, "PES", detail.MonId)
	})

	t.Run("GoodsConceptOmitsServiceDates", func(t *testing.T) {
		inv := buildInvoice(t, invoice.ConceptGoods)
		detail := buildVoucherDetail(inv, 1)

		assert.Empty(t, detail.FchServDesde)
		assert.Empty(t, detail.FchServHasta)
		assert.Empty(t, detail.FchVtoPago)
	})

	t.Run("ServiceConceptsIncludeServiceDates", func(t *testing.T) {
		for _, concept := range []int{invoice.ConceptServices, invoice.ConceptGoodsAndServices} {
			inv := buildInvoice(t, concept)
			detail := buildVoucherDetail(inv, 1)

			assert.Equal(t, "20260101", detail.FchServDesde)
			assert.Equal(t, "20260131", detail.FchServHasta)
			assert.Equal(t, "20260210", detail.FchVtoPago)
		}
	})
}

func TestMapCurrency(t *testing.T) {
	assert.Equal(t, "PES", mapCurrency("ARS"))
	assert.Equal(t, "DOL", mapCurrency("USD"))
	assert.Equal(t, "EUR", mapCurrency("EUR"))
	// Unknown codes pass through.
	assert.Equal(t, "GBP", mapCurrency("GBP"))
}
