package repository

import (
	"context"
	"errors"
	"fmt"

	"drivedrop-pricing/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	pgxV5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	configColumns = `id, current_fuel_price, min_quote, surge_enabled, surge_multiplier,
        base_rate_per_mile, vehicle_type_multipliers, delivery_type_multipliers,
        accident_recovery_surcharge, expedited_threshold_days, is_active, version,
        created_at, updated_at`

	getActiveConfigQuery = `SELECT ` + configColumns + ` FROM pricing_configs WHERE is_active LIMIT 1`

	getConfigByIDQuery = `SELECT ` + configColumns + ` FROM pricing_configs WHERE id = $1`

	// CAS по version: при гонке двух админских обновлений проигравший получает
	// 0 затронутых строк и models.ErrVersionConflict.
	updateConfigQuery = `
        UPDATE pricing_configs SET
            current_fuel_price = $1,
            min_quote = $2,
            surge_enabled = $3,
            surge_multiplier = $4,
            base_rate_per_mile = $5,
            vehicle_type_multipliers = $6,
            delivery_type_multipliers = $7,
            accident_recovery_surcharge = $8,
            expedited_threshold_days = $9,
            version = version + 1,
            updated_at = now()
        WHERE id = $10 AND version = $11
        RETURNING version, updated_at
    `

	insertHistoryQuery = `
        INSERT INTO pricing_config_history
            (config_id, changed_fields, change_reason, previous_values, new_values, changed_by)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	getHistoryQuery = `
        SELECT id, config_id, changed_fields, change_reason, previous_values, new_values, changed_by, changed_at
        FROM pricing_config_history
        WHERE config_id = $1
        ORDER BY changed_at DESC, id DESC
        LIMIT $2
    `
)

type pgPricingConfigRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgPricingConfigRepository создает Postgres-репозиторий конфигураций ценообразования.
func NewPgPricingConfigRepository(pool *pgxpool.Pool, logger *zap.Logger) *pgPricingConfigRepository {
	return &pgPricingConfigRepository{
		pool:   pool,
		logger: logger.Named("PgPricingConfigRepo"),
	}
}

// GetActive возвращает единственную активную конфигурацию.
// Отсутствие активной строки - нарушение инварианта (seed-миграция обязана ее создать).
func (r *pgPricingConfigRepository) GetActive(ctx context.Context) (*models.PricingConfig, error) {
	var config models.PricingConfig
	err := pgxscan.Get(ctx, r.pool, &config, getActiveConfigQuery)
	if err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			r.logger.Error("No active pricing config found - invariant violated, check seed migration")
			return nil, models.ErrActiveConfigNotFound
		}
		r.logger.Error("Error getting active pricing config", zap.Error(err))
		return nil, fmt.Errorf("failed to get active pricing config: %w", err)
	}
	return &config, nil
}

// GetByID возвращает конфигурацию по id.
func (r *pgPricingConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PricingConfig, error) {
	log := r.logger.With(zap.String("configID", id.String()))

	var config models.PricingConfig
	err := pgxscan.Get(ctx, r.pool, &config, getConfigByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			log.Warn("Pricing config not found by id")
			return nil, models.ErrNotFound
		}
		log.Error("Error getting pricing config by id", zap.Error(err))
		return nil, fmt.Errorf("failed to get pricing config %s: %w", id, err)
	}
	return &config, nil
}

// Update применяет частичное обновление внутри одной транзакции:
// читает текущую версию, строит diff, выполняет CAS-запись и добавляет строку истории.
// Если ни одно поле фактически не изменилось, запись и история пропускаются.
func (r *pgPricingConfigRepository) Update(ctx context.Context, id uuid.UUID, upd models.PricingConfigUpdate, reason string, changedBy uuid.UUID) (*models.PricingConfig, error) {
	log := r.logger.With(zap.String("configID", id.String()))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback после commit - no-op

	var current models.PricingConfig
	if err := pgxscan.Get(ctx, tx, &current, getConfigByIDQuery, id); err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			log.Warn("Pricing config not found for update")
			return nil, models.ErrNotFound
		}
		log.Error("Error reading pricing config for update", zap.Error(err))
		return nil, fmt.Errorf("failed to read pricing config %s: %w", id, err)
	}

	merged, changed, prevValues, newValues := current.ApplyUpdate(upd)
	if len(changed) == 0 {
		log.Info("Pricing config update is a no-op, nothing changed")
		return &current, nil
	}

	row := tx.QueryRow(ctx, updateConfigQuery,
		merged.CurrentFuelPrice,
		merged.MinQuote,
		merged.SurgeEnabled,
		merged.SurgeMultiplier,
		merged.BaseRatePerMile,
		merged.VehicleTypeMultipliers,
		merged.DeliveryTypeMultipliers,
		merged.AccidentRecoverySurcharge,
		merged.ExpeditedThresholdDays,
		id,
		current.Version,
	)
	if err := row.Scan(&merged.Version, &merged.UpdatedAt); err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			// Версию успел поднять конкурирующий writer
			log.Warn("Pricing config version conflict on update", zap.Int("expectedVersion", current.Version))
			return nil, models.ErrVersionConflict
		}
		log.Error("Error updating pricing config", zap.Error(err))
		return nil, fmt.Errorf("failed to update pricing config %s: %w", id, err)
	}

	if _, err := tx.Exec(ctx, insertHistoryQuery, id, changed, reason, prevValues, newValues, changedBy); err != nil {
		log.Error("Error inserting pricing config history", zap.Error(err))
		return nil, fmt.Errorf("failed to insert pricing config history for %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit pricing config update: %w", err)
	}

	log.Info("Pricing config updated",
		zap.Int("version", merged.Version),
		zap.Strings("changedFields", changed),
		zap.String("changedBy", changedBy.String()),
	)
	return &merged, nil
}

// GetHistory возвращает записи истории изменений, сначала самые свежие.
func (r *pgPricingConfigRepository) GetHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.PricingConfigHistory, error) {
	log := r.logger.With(zap.String("configID", id.String()))

	var history []models.PricingConfigHistory
	err := pgxscan.Select(ctx, r.pool, &history, getHistoryQuery, id, limit)
	if err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			return []models.PricingConfigHistory{}, nil
		}
		log.Error("Error getting pricing config history", zap.Error(err))
		return nil, fmt.Errorf("failed to get pricing config history for %s: %w", id, err)
	}
	if history == nil {
		history = []models.PricingConfigHistory{}
	}
	return history, nil
}
