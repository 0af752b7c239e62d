package handler

import (
	"errors"
	"net/http"

	"drivedrop-pricing/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError переводит ошибки сервисного слоя в HTTP-ответ
// со стандартным конвертом и машиночитаемым кодом.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var resp models.APIResponse

	switch {
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusBadRequest
		resp = models.ErrorResponse(models.ErrCodeValidation, err.Error())
	case errors.Is(err, models.ErrUnknownVehicleType):
		// Никогда не дефолтим неизвестный тип ТС: молчаливый дефолт - это
		// недо- или переоценка перевозки, т.е. финансовая ошибка
		statusCode = http.StatusBadRequest
		resp = models.ErrorResponse(models.ErrCodeUnknownVehicleType, err.Error())
	case errors.Is(err, models.ErrVersionConflict):
		statusCode = http.StatusConflict
		resp = models.ErrorResponse(models.ErrCodeVersionConflict, "Pricing config was modified concurrently, retry the update")
	case errors.Is(err, models.ErrActiveConfigNotFound):
		// Активная конфигурация обязана существовать: это не пользовательская
		// ошибка, а неправильно развернутый сервис. Алерт, а не 404.
		statusCode = http.StatusInternalServerError
		resp = models.ErrorResponse(models.ErrCodeConfigNotFound, "Active pricing config is missing")
		zap.L().Error("Active pricing config missing - server misconfiguration", zap.Error(err))
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		resp = models.ErrorResponse(models.ErrCodeConfigNotFound, "Pricing config not found")
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		resp = models.ErrorResponse(models.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		resp = models.ErrorResponse(models.ErrCodeTokenInvalid, "Token is invalid or malformed")
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		resp = models.ErrorResponse(models.ErrCodeForbidden, "Admin role required")
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		resp = models.ErrorResponse(models.ErrCodeInternal, "An unexpected internal error occurred")
	}

	c.AbortWithStatusJSON(statusCode, resp)
}
