package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/afip-einvoicing/internal/api/handler"
	"github.com/afip-einvoicing/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	invoiceHandler *handler.InvoiceHandler,
	queueHandler *handler.QueueHandler,
	voucherHandler *handler.VoucherHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Invoice operations
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoiceHandler.Create)
			invoices.GET("/pending", invoiceHandler.ListPending)
			invoices.GET("/:id", invoiceHandler.GetByID)
			invoices.GET("/:id/pdf", invoiceHandler.ExportPDF)
			invoices.GET("/:id/submissions", invoiceHandler.ListSubmissions)
		}

		// Queue operations
		queue := v1.Group("/queue")
		{
			queue.POST("/drain", queueHandler.Drain)
			queue.GET("", queueHandler.Status)
		}

		// Authority voucher lookups
		v1.GET("/vouchers/:pos/:type/:number", voucherHandler.Get)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
