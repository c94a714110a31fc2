package handler

import (
	"log/slog"

	"github.com/afip-einvoicing/internal/invoicing/service"
	"github.com/gin-gonic/gin"
)

// QueueHandler handles HTTP requests for queue operations
type QueueHandler struct {
	processService service.ProcessService
	logger         *slog.Logger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(logger *slog.Logger, processService service.ProcessService) *QueueHandler {
	return &QueueHandler{
		processService: processService,
		logger:         logger,
	}
}

// Drain triggers an immediate queue drain. When a drain is already running
// the call returns a zero count rather than waiting.
func (h *QueueHandler) Drain(c *gin.Context) {
	processed, err := h.processService.DrainQueue(c.Request.Context())
	if err != nil {
		h.logger.Error("Queue drain failed", "processed", processed, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, DrainResponse{Processed: processed})
}

// Status reports the number of events waiting in the queue
func (h *QueueHandler) Status(c *gin.Context) {
	RespondOK(c, QueueStatusResponse{Size: h.processService.QueueSize()})
}
