package service

import (
	"context"
	"testing"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServiceImpl_ValidateVoucher(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockBilling := new(MockBillingService)
		svc := NewValidateService(mockBilling, testLogger())

		expiry, err := invoice.DateFromCompact("20260210")
		require.NoError(t, err)
		expected := &billing.VoucherInfo{
			VoucherNumber: 42,
			CAE:           "71234567890123",
			CAEExpiry:     expiry,
			Result:        "A",
		}
		mockBilling.On("GetVoucherInfo", ctx, 1, 6, int64(42)).Return(expected, nil).Once()

		info, err := svc.ValidateVoucher(ctx, 1, 6, 42)

		require.NoError(t, err)
		assert.Equal(t, expected, info)
		mockBilling.AssertExpectations(t)
	})

	t.Run("AuthorityError", func(t *testing.T) {
		mockBilling := new(MockBillingService)
		svc := NewValidateService(mockBilling, testLogger())

		rejection := billing.ErrSubmissionRejected{Code: 602, Message: "Sin resultados"}
		mockBilling.On("GetVoucherInfo", ctx, 1, 6, int64(999)).Return(nil, rejection).Once()

		info, err := svc.ValidateVoucher(ctx, 1, 6, 999)

		require.Error(t, err)
		assert.Nil(t, info)
		var rejected billing.ErrSubmissionRejected
		assert.ErrorAs(t, err, &rejected)
	})
}
