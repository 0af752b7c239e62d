package handler

import (
	"errors"
	"net/http"

	"drivedrop-pricing/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// computeQuote обрабатывает POST /api/v1/pricing/quote.
func (h *PricingHandler) computeQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Failed to bind quote request", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.ErrCodeBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	breakdown, err := h.pricingService.ComputeQuote(c.Request.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrUnknownVehicleType) {
			quotesTotal.WithLabelValues("rejected").Inc()
		} else {
			quotesTotal.WithLabelValues("error").Inc()
		}
		handleServiceError(c, err)
		return
	}

	quotesTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, models.SuccessResponse(breakdown))
}
