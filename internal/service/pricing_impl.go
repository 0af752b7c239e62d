package service

import (
	"context"
	"errors"
	"time"

	"drivedrop-pricing/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Количество попыток CAS-записи при конкурирующих админских обновлениях.
const updateMaxAttempts = 3

// Compile-time check
var _ PricingService = (*pricingServiceImpl)(nil)

type pricingServiceImpl struct {
	repo      ConfigRepository
	cache     ConfigCache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPricingService создает реализацию PricingService.
func NewPricingService(repo ConfigRepository, cache ConfigCache, publisher EventPublisher, logger *zap.Logger) *pricingServiceImpl {
	return &pricingServiceImpl{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("PricingService"),
	}
}

func (s *pricingServiceImpl) ComputeQuote(ctx context.Context, req models.QuoteRequest) (*models.QuoteBreakdown, error) {
	var cfg *models.PricingConfig
	var err error

	if req.UseDynamicConfig {
		cfg, err = s.cache.GetOrLoad(ctx, s.repo.GetActive)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = models.DefaultPricingConfig()
	}

	breakdown, err := ComputeQuoteBreakdown(req, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Quote computed",
		zap.String("vehicleType", string(req.VehicleType)),
		zap.String("distanceMiles", req.DistanceMiles.String()),
		zap.String("total", breakdown.Total.String()),
		zap.Bool("dynamicConfig", req.UseDynamicConfig),
		zap.Int("configVersion", breakdown.ConfigVersion),
	)
	return breakdown, nil
}

func (s *pricingServiceImpl) GetActiveConfig(ctx context.Context) (*models.PricingConfig, error) {
	return s.repo.GetActive(ctx)
}

func (s *pricingServiceImpl) UpdateConfig(ctx context.Context, id uuid.UUID, upd models.PricingConfigUpdate, reason string, changedBy uuid.UUID) (*models.PricingConfig, error) {
	if err := upd.Validate(); err != nil {
		// Стор остается нетронутым, кэш сбрасывать не нужно
		return nil, err
	}

	var updated *models.PricingConfig
	var err error
	for attempt := 1; attempt <= updateMaxAttempts; attempt++ {
		updated, err = s.repo.Update(ctx, id, upd, reason, changedBy)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, err
		}
		s.logger.Warn("Pricing config update hit version conflict, retrying",
			zap.String("configID", id.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	// Кэш сбрасываем после коммита. Ошибка сброса не отменяет обновление:
	// TTL все равно ограничивает окно устаревших чтений.
	if cacheErr := s.cache.Invalidate(ctx); cacheErr != nil {
		s.logger.Error("Failed to invalidate config cache after update", zap.Error(cacheErr))
	}

	event := models.ConfigUpdatedEvent{
		ConfigID:  updated.ID,
		Version:   updated.Version,
		ChangedBy: changedBy,
		UpdatedAt: time.Now().UTC(),
	}
	if pubErr := s.publisher.PublishConfigUpdated(ctx, event); pubErr != nil {
		s.logger.Error("Failed to publish config updated event", zap.Error(pubErr))
	}

	return updated, nil
}

func (s *pricingServiceImpl) GetConfigHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.PricingConfigHistory, error) {
	// Дефолт и границы лимита: админка может запросить больше, но не безгранично
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.GetHistory(ctx, id, limit)
}

func (s *pricingServiceImpl) ClearCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
