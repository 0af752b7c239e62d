package mocks

import (
	"context"

	"drivedrop-pricing/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock ConfigRepository
type ConfigRepository struct {
	mock.Mock
}

func (m *ConfigRepository) GetActive(ctx context.Context) (*models.PricingConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}
func (m *ConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PricingConfig, error) {
	args := m.Called(ctx, id)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}
func (m *ConfigRepository) Update(ctx context.Context, id uuid.UUID, upd models.PricingConfigUpdate, reason string, changedBy uuid.UUID) (*models.PricingConfig, error) {
	args := m.Called(ctx, id, upd, reason, changedBy)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}
func (m *ConfigRepository) GetHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.PricingConfigHistory, error) {
	args := m.Called(ctx, id, limit)
	history, _ := args.Get(0).([]models.PricingConfigHistory)
	return history, args.Error(1)
}

// Mock ConfigCache
type ConfigCache struct {
	mock.Mock
}

func (m *ConfigCache) GetOrLoad(ctx context.Context, loader func(context.Context) (*models.PricingConfig, error)) (*models.PricingConfig, error) {
	args := m.Called(ctx, loader)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}
func (m *ConfigCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Mock PricingService
type PricingService struct {
	mock.Mock
}

func (m *PricingService) ComputeQuote(ctx context.Context, req models.QuoteRequest) (*models.QuoteBreakdown, error) {
	args := m.Called(ctx, req)
	breakdown, _ := args.Get(0).(*models.QuoteBreakdown)
	return breakdown, args.Error(1)
}
func (m *PricingService) GetActiveConfig(ctx context.Context) (*models.PricingConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}
func (m *PricingService) UpdateConfig(ctx context.Context, id uuid.UUID, upd models.PricingConfigUpdate, reason string, changedBy uuid.UUID) (*models.PricingConfig, error) {
	args := m.Called(ctx, id, upd, reason, changedBy)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}
func (m *PricingService) GetConfigHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.PricingConfigHistory, error) {
	args := m.Called(ctx, id, limit)
	history, _ := args.Get(0).([]models.PricingConfigHistory)
	return history, args.Error(1)
}
func (m *PricingService) ClearCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Mock EventPublisher
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishConfigUpdated(ctx context.Context, event models.ConfigUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
