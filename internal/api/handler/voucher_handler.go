package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/invoicing/service"
	"github.com/gin-gonic/gin"
)

// VoucherHandler handles HTTP requests for authority voucher lookups
type VoucherHandler struct {
	validateService service.ValidateService
	logger          *slog.Logger
}

// NewVoucherHandler creates a new voucher handler
func NewVoucherHandler(logger *slog.Logger, validateService service.ValidateService) *VoucherHandler {
	return &VoucherHandler{
		validateService: validateService,
		logger:          logger,
	}
}

// Get looks up an issued voucher at the billing authority
func (h *VoucherHandler) Get(c *gin.Context) {
	pointOfSale, err := strconv.Atoi(c.Param("pos"))
	if err != nil || pointOfSale <= 0 {
		RespondBadRequest(c, "Invalid point of sale")
		return
	}
	voucherType, err := strconv.Atoi(c.Param("type"))
	if err != nil || voucherType <= 0 {
		RespondBadRequest(c, "Invalid voucher type")
		return
	}
	voucherNumber, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || voucherNumber <= 0 {
		RespondBadRequest(c, "Invalid voucher number")
		return
	}

	info, err := h.validateService.ValidateVoucher(c.Request.Context(), pointOfSale, voucherType, voucherNumber)
	if err != nil {
		var rejected billing.ErrSubmissionRejected
		if errors.As(err, &rejected) {
			RespondNotFound(c, rejected.Message)
			return
		}
		h.logger.Error("Voucher lookup failed", "error", err)
		RespondBadGateway(c, "")
		return
	}

	response := VoucherInfoResponse{
		VoucherNumber: info.VoucherNumber,
		CAE:           info.CAE,
		Result:        info.Result,
	}
	if !info.CAEExpiry.IsZero() {
		response.CAEExpiry = info.CAEExpiry.ISO()
	}
	RespondOK(c, response)
}
