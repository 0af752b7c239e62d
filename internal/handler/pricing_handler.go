package handler

import (
	"drivedrop-pricing/internal/config"
	"drivedrop-pricing/internal/models"
	"drivedrop-pricing/internal/service"

	"github.com/gin-gonic/gin"
)

// PricingHandler - HTTP-слой сервиса ценообразования.
type PricingHandler struct {
	pricingService service.PricingService
	cfg            *config.Config
}

// NewPricingHandler создает новый экземпляр PricingHandler.
func NewPricingHandler(pricingService service.PricingService, cfg *config.Config) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		cfg:            cfg,
	}
}

// RegisterRoutes регистрирует маршруты сервиса.
// quoteRateLimiter применяется только к публичному эндпоинту котировок;
// админские маршруты дополнительно требуют роль admin.
func (h *PricingHandler) RegisterRoutes(router *gin.Engine, quoteRateLimiter gin.HandlerFunc) {
	api := router.Group("/api/v1")

	pricing := api.Group("/pricing")
	pricing.Use(h.AuthMiddleware())
	if quoteRateLimiter != nil {
		pricing.POST("/quote", quoteRateLimiter, h.computeQuote)
	} else {
		pricing.POST("/quote", h.computeQuote)
	}

	admin := api.Group("/admin/pricing")
	admin.Use(h.AuthMiddleware(), h.RequireRole(models.RoleAdmin))
	admin.GET("/config", h.getActiveConfig)
	admin.PUT("/config/:id", h.updateConfig)
	admin.GET("/config/:id/history", h.getConfigHistory)
	admin.POST("/cache/clear", h.clearCache)
}
