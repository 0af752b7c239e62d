package handler

import (
	"net/http"
	"strconv"

	"drivedrop-pricing/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// getActiveConfig обрабатывает GET /api/v1/admin/pricing/config.
// Читает напрямую из БД, мимо кэша: админ должен видеть актуальное состояние.
func (h *PricingHandler) getActiveConfig(c *gin.Context) {
	cfg, err := h.pricingService.GetActiveConfig(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(cfg))
}

// updateConfig обрабатывает PUT /api/v1/admin/pricing/config/:id.
func (h *PricingHandler) updateConfig(c *gin.Context) {
	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.ErrCodeMissingID, "Invalid config ID format in URL"))
		return
	}

	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Failed to bind config update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.ErrCodeBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	updated, err := h.pricingService.UpdateConfig(c.Request.Context(), configID, req.toModel(), req.ChangeReason, claims.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	configUpdatesTotal.Inc()
	zap.L().Info("Pricing config updated",
		zap.String("configID", configID.String()),
		zap.Int("newVersion", updated.Version),
		zap.String("changedBy", claims.UserID.String()),
	)
	c.JSON(http.StatusOK, models.SuccessResponse(updated))
}

// getConfigHistory обрабатывает GET /api/v1/admin/pricing/config/:id/history.
// Параметр limit опционален, границы применяет сервисный слой.
func (h *PricingHandler) getConfigHistory(c *gin.Context) {
	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.ErrCodeMissingID, "Invalid config ID format in URL"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.ErrCodeBadRequest, "limit must be an integer"))
			return
		}
	}

	history, err := h.pricingService.GetConfigHistory(c.Request.Context(), configID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(history))
}

// clearCache обрабатывает POST /api/v1/admin/pricing/cache/clear.
func (h *PricingHandler) clearCache(c *gin.Context) {
	if err := h.pricingService.ClearCache(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}

	cacheClearsTotal.Inc()
	zap.L().Info("Pricing config cache cleared manually")
	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"cleared": true}))
}
