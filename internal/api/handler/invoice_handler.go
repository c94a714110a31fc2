package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/submission"
	"github.com/afip-einvoicing/internal/invoicing/export"
	"github.com/afip-einvoicing/internal/invoicing/service"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles HTTP requests for invoice operations
type InvoiceHandler struct {
	createService  service.CreateService
	processService service.ProcessService
	pdfGenerator   *export.PDFGenerator
	logger         *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(logger *slog.Logger, createService service.CreateService, processService service.ProcessService, pdfGenerator *export.PDFGenerator) *InvoiceHandler {
	return &InvoiceHandler{
		createService:  createService,
		processService: processService,
		pdfGenerator:   pdfGenerator,
		logger:         logger,
	}
}

// Create handles creation of a new invoice draft, validating the request
// before it reaches the domain
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	params, err := req.ToParams()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	inv, err := h.createService.CreateInvoice(c.Request.Context(), params)
	if err != nil {
		var invalidAmounts invoice.ErrInvalidAmounts
		if errors.As(err, &invalidAmounts) {
			h.logger.Warn("Rejected unbalanced invoice", "error", err)
			RespondUnprocessable(c, err.Error())
			return
		}
		h.logger.Error("Failed to create invoice", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapInvoiceToResponse(inv))
}

// GetByID retrieves an invoice by its ID, returning 404 if not found
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	inv, err := h.createService.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		var notFound invoice.ErrInvoiceNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Invoice not found")
			return
		}
		h.logger.Error("Failed to get invoice", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapInvoiceToResponse(inv))
}

// ListPending retrieves all invoices still awaiting submission
func (h *InvoiceHandler) ListPending(c *gin.Context) {
	pending, err := h.createService.ListPendingInvoices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list pending invoices", "error", err)
		RespondInternalError(c)
		return
	}

	response := InvoiceListResponse{Invoices: make([]InvoiceResponse, 0, len(pending))}
	for _, inv := range pending {
		response.Invoices = append(response.Invoices, mapInvoiceToResponse(inv))
	}
	RespondOK(c, response)
}

// ExportPDF renders the voucher of an authorized invoice as a PDF document
func (h *InvoiceHandler) ExportPDF(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	inv, err := h.createService.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		var notFound invoice.ErrInvoiceNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Invoice not found")
			return
		}
		h.logger.Error("Failed to get invoice for PDF export", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	data, err := h.pdfGenerator.VoucherPDF(inv)
	if err != nil {
		if errors.Is(err, export.ErrNotAuthorized) {
			RespondUnprocessable(c, "Invoice has not been authorized yet")
			return
		}
		h.logger.Error("Failed to render voucher PDF", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="voucher-`+strconv.FormatInt(id, 10)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ListSubmissions retrieves the audit trail of submission attempts for an
// invoice, including failed ones
func (h *InvoiceHandler) ListSubmissions(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	records, err := h.processService.ListSubmissions(c.Request.Context(), id)
	if err != nil {
		var noRecords submission.ErrNoRecords
		if errors.As(err, &noRecords) {
			RespondNotFound(c, "No submission attempts for this invoice")
			return
		}
		h.logger.Error("Failed to list submissions", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	response := SubmissionListResponse{Submissions: make([]SubmissionRecordResponse, 0, len(records))}
	for _, record := range records {
		response.Submissions = append(response.Submissions, SubmissionRecordResponse{
			InvoiceID:     record.InvoiceID,
			PointOfSale:   record.PointOfSale,
			VoucherType:   record.VoucherType,
			VoucherNumber: record.VoucherNumber,
			CAE:           record.CAE,
			Result:        string(record.Result),
			FailureReason: record.FailureReason,
			SubmittedAt:   record.SubmittedAt.Format(time.RFC3339),
		})
	}
	RespondOK(c, response)
}

func (h *InvoiceHandler) parseID(c *gin.Context) (int64, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid invoice ID", "id", idParam)
		RespondBadRequest(c, "Invalid invoice ID")
		return 0, false
	}
	return id, true
}

// mapInvoiceToResponse maps an invoice entity to a response DTO
func mapInvoiceToResponse(inv *invoice.Invoice) InvoiceResponse {
	response := InvoiceResponse{
		ID:                     inv.ID,
		PointOfSale:            inv.PointOfSale,
		VoucherType:            inv.VoucherType,
		Concept:                inv.Concept,
		DocumentType:           inv.DocumentType,
		DocumentNumber:         inv.DocumentNumber,
		ReceiverVatConditionID: inv.ReceiverVatConditionID,
		VoucherDate:            inv.VoucherDate.ISO(),
		Currency:               inv.Currency(),
		CurrencyRate:           inv.CurrencyRate,
		Total:                  inv.Total.Decimal(),
		Untaxed:                inv.Untaxed.Decimal(),
		Net:                    inv.Net.Decimal(),
		Exempt:                 inv.Exempt.Decimal(),
		OtherTax:               inv.OtherTax.Decimal(),
		Vat:                    inv.Vat.Decimal(),
		VoucherNumber:          inv.VoucherNumber,
		CAE:                    inv.CAE,
		Status:                 string(inv.Status),
		CreatedAt:              inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              inv.UpdatedAt.Format(time.RFC3339),
	}

	for _, item := range inv.VatItems {
		response.VatItems = append(response.VatItems, VatItemResponse{
			RateCategoryID: item.RateCategoryID,
			TaxableBase:    item.TaxableBase,
			TaxAmount:      item.TaxAmount,
		})
	}

	if !inv.ServiceFrom.IsZero() {
		response.ServiceFrom = inv.ServiceFrom.ISO()
	}
	if !inv.ServiceTo.IsZero() {
		response.ServiceTo = inv.ServiceTo.ISO()
	}
	if !inv.PaymentDue.IsZero() {
		response.PaymentDue = inv.PaymentDue.ISO()
	}
	if !inv.CAEExpiry.IsZero() {
		response.CAEExpiry = inv.CAEExpiry.ISO()
	}

	return response
}
