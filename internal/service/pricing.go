package service

import (
	"context"

	"drivedrop-pricing/internal/models"

	"github.com/google/uuid"
)

// ConfigRepository - хранилище конфигураций ценообразования и их истории.
type ConfigRepository interface {
	GetActive(ctx context.Context) (*models.PricingConfig, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PricingConfig, error)
	Update(ctx context.Context, id uuid.UUID, upd models.PricingConfigUpdate, reason string, changedBy uuid.UUID) (*models.PricingConfig, error)
	GetHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.PricingConfigHistory, error)
}

// ConfigCache - кэш активной конфигурации.
type ConfigCache interface {
	GetOrLoad(ctx context.Context, loader func(context.Context) (*models.PricingConfig, error)) (*models.PricingConfig, error)
	Invalidate(ctx context.Context) error
}

// EventPublisher публикует события об изменении конфигурации.
type EventPublisher interface {
	PublishConfigUpdated(ctx context.Context, event models.ConfigUpdatedEvent) error
}

// PricingService - бизнес-логика ценообразования: котировки, административные
// операции над конфигурацией и когерентность кэша.
type PricingService interface {
	// ComputeQuote рассчитывает котировку. При req.UseDynamicConfig конфигурация
	// загружается через кэш, иначе используется статический снимок по умолчанию.
	ComputeQuote(ctx context.Context, req models.QuoteRequest) (*models.QuoteBreakdown, error)

	// GetActiveConfig возвращает активную конфигурацию (мимо кэша, для админки).
	GetActiveConfig(ctx context.Context) (*models.PricingConfig, error)

	// UpdateConfig применяет частичное обновление, сбрасывает кэш и публикует событие.
	UpdateConfig(ctx context.Context, id uuid.UUID, upd models.PricingConfigUpdate, reason string, changedBy uuid.UUID) (*models.PricingConfig, error)

	// GetConfigHistory возвращает историю изменений, сначала самые свежие.
	GetConfigHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.PricingConfigHistory, error)

	// ClearCache - ручной сброс кэша (админский escape hatch).
	ClearCache(ctx context.Context) error
}
