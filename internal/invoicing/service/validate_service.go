package service

import (
	"context"
	"log/slog"

	"github.com/afip-einvoicing/internal/billing"
)

// ValidateServiceImpl implements the ValidateService interface
type ValidateServiceImpl struct {
	billingSvc billing.Service
	logger     *slog.Logger
}

// NewValidateService creates a new voucher lookup service
func NewValidateService(billingSvc billing.Service, logger *slog.Logger) ValidateService {
	return &ValidateServiceImpl{
		billingSvc: billingSvc,
		logger:     logger,
	}
}

// ValidateVoucher fetches the authority's record of an issued voucher
func (s *ValidateServiceImpl) ValidateVoucher(ctx context.Context, pointOfSale, voucherType int, voucherNumber int64) (*billing.VoucherInfo, error) {
	info, err := s.billingSvc.GetVoucherInfo(ctx, pointOfSale, voucherType, voucherNumber)
	if err != nil {
		s.logger.Error("Voucher lookup failed",
			"point_of_sale", pointOfSale,
			"voucher_type", voucherType,
			"voucher_number", voucherNumber,
			"error", err,
		)
		return nil, err
	}
	return info, nil
}
