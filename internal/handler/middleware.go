package handler

import (
	"errors"
	"fmt"
	"strings"

	"drivedrop-pricing/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const claimsContextKey = "claims"

// AuthMiddleware проверяет bearer JWT и кладет claims в контекст запроса.
func (h *PricingHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			zap.L().Warn("Authorization header missing", zap.String("path", c.Request.URL.Path))
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			zap.L().Warn("Invalid Authorization header format")
			handleServiceError(c, models.ErrTokenMalformed)
			return
		}

		claims, err := h.verifyToken(parts[1])
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			handleServiceError(c, err)
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireRole пропускает запрос только при наличии одной из указанных ролей.
// Должен стоять после AuthMiddleware.
func (h *PricingHandler) RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		for _, role := range requiredRoles {
			if models.HasRole(claims.Roles, role) {
				c.Next()
				return
			}
		}

		zap.L().Warn("User lacks required role",
			zap.String("userID", claims.UserID.String()),
			zap.Strings("userRoles", claims.Roles),
			zap.Strings("requiredRoles", requiredRoles),
		)
		handleServiceError(c, models.ErrForbidden)
	}
}

// verifyToken парсит и верифицирует HMAC-подписанный access token.
func (h *PricingHandler) verifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		default:
			return nil, models.ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// claimsFromContext достает claims, положенные AuthMiddleware.
func claimsFromContext(c *gin.Context) *models.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.Claims)
	if !ok {
		return nil
	}
	return claims
}
