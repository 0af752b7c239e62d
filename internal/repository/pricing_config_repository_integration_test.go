package repository_test // Используем _test пакет для изоляции

import (
	"context"
	"testing"
	"time"

	"drivedrop-pricing/internal/models"
	"drivedrop-pricing/internal/repository"
	"drivedrop-pricing/internal/service"
	"drivedrop-pricing/migrations"
	"drivedrop-pricing/pkg/migration"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RepositoryTestSuite поднимает реальный PostgreSQL в контейнере
// и прогоняет миграции, включая seed активной конфигурации.
type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pgPool      *pgxpool.Pool
	repo        service.ConfigRepository
	logger      *zap.Logger
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	poolConfig, err := pgxpool.ParseConfig(pgConnStr)
	require.NoError(s.T(), err)
	// Тот же кодек numeric <-> decimal, что и в продовом пуле
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	s.pgPool, err = pgxpool.NewWithConfig(s.ctx, poolConfig)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, s.pgPool)
	require.NoError(s.T(), migrator.Up(s.ctx), "Failed to run migrations")

	s.repo = repository.NewPgPricingConfigRepository(s.pgPool, s.logger)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
}

// Перед каждым тестом возвращаем конфигурацию к seed-состоянию и чистим историю.
func (s *RepositoryTestSuite) SetupTest() {
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE pricing_config_history")
	require.NoError(s.T(), err, "Failed to truncate history table")
	_, err = s.pgPool.Exec(s.ctx, `
        UPDATE pricing_configs SET
            current_fuel_price = 3.95,
            min_quote = 150,
            surge_enabled = false,
            surge_multiplier = 1.0,
            base_rate_per_mile = 1.75,
            accident_recovery_surcharge = 150,
            expedited_threshold_days = 7,
            version = 1
        WHERE is_active`)
	require.NoError(s.T(), err, "Failed to reset active pricing config")
}

func (s *RepositoryTestSuite) TestGetActiveReturnsSeededConfig() {
	cfg, err := s.repo.GetActive(s.ctx)
	require.NoError(s.T(), err)

	s.Require().NotNil(cfg)
	s.True(cfg.IsActive)
	s.Equal(1, cfg.Version)
	s.True(cfg.CurrentFuelPrice.Equal(decimal.NewFromFloat(3.95)), "fuel price = %s", cfg.CurrentFuelPrice)
	s.True(cfg.BaseRatePerMile.Equal(decimal.NewFromFloat(1.75)))
	s.True(cfg.VehicleTypeMultipliers[models.VehicleTypeSUV].Equal(decimal.NewFromFloat(1.15)))
	s.True(cfg.DeliveryTypeMultipliers[models.DeliveryTypeExpedited].Equal(decimal.NewFromFloat(1.35)))
}

func (s *RepositoryTestSuite) TestSingleActiveConfigInvariant() {
	// Частичный уникальный индекс не даст вставить вторую активную строку
	_, err := s.pgPool.Exec(s.ctx, `
        INSERT INTO pricing_configs
            (current_fuel_price, min_quote, surge_enabled, surge_multiplier, base_rate_per_mile,
             vehicle_type_multipliers, delivery_type_multipliers,
             accident_recovery_surcharge, expedited_threshold_days, is_active)
        VALUES (4.00, 100, false, 1.0, 2.00, '{}', '{}', 100, 5, true)`)
	s.Require().Error(err)
	s.Contains(err.Error(), "pricing_configs_single_active_idx")
}

func (s *RepositoryTestSuite) TestGetByIDNotFound() {
	_, err := s.repo.GetByID(s.ctx, uuid.New())
	s.Require().ErrorIs(err, models.ErrNotFound)
}

func (s *RepositoryTestSuite) TestUpdateBumpsVersionAndWritesHistory() {
	active, err := s.repo.GetActive(s.ctx)
	require.NoError(s.T(), err)

	adminID := uuid.New()
	newFuelPrice := decimal.NewFromFloat(4.25)
	surgeOn := true
	upd := models.PricingConfigUpdate{
		CurrentFuelPrice: &newFuelPrice,
		SurgeEnabled:     &surgeOn,
	}

	updated, err := s.repo.Update(s.ctx, active.ID, upd, "fuel spike", adminID)
	require.NoError(s.T(), err)

	s.Equal(active.Version+1, updated.Version)
	s.True(updated.CurrentFuelPrice.Equal(newFuelPrice))
	s.True(updated.SurgeEnabled)
	// Не тронутые поля сохраняются
	s.True(updated.BaseRatePerMile.Equal(active.BaseRatePerMile))

	history, err := s.repo.GetHistory(s.ctx, active.ID, 10)
	require.NoError(s.T(), err)
	s.Require().Len(history, 1)

	entry := history[0]
	s.Equal(active.ID, entry.ConfigID)
	s.Equal(adminID, entry.ChangedBy)
	s.Equal("fuel spike", entry.ChangeReason)
	// В diff попадают только реально изменившиеся поля
	s.ElementsMatch([]string{"current_fuel_price", "surge_enabled"}, entry.ChangedFields)
	s.Contains(entry.PreviousValues, "current_fuel_price")
	s.Contains(entry.NewValues, "surge_enabled")
	s.NotContains(entry.PreviousValues, "base_rate_per_mile")
}

func (s *RepositoryTestSuite) TestNoOpUpdateSkipsHistory() {
	active, err := s.repo.GetActive(s.ctx)
	require.NoError(s.T(), err)

	samePrice := active.CurrentFuelPrice
	upd := models.PricingConfigUpdate{CurrentFuelPrice: &samePrice}

	updated, err := s.repo.Update(s.ctx, active.ID, upd, "no changes", uuid.New())
	require.NoError(s.T(), err)
	s.Equal(active.Version, updated.Version)

	history, err := s.repo.GetHistory(s.ctx, active.ID, 10)
	require.NoError(s.T(), err)
	s.Empty(history)
}

func (s *RepositoryTestSuite) TestHistoryOrderedMostRecentFirstWithLimit() {
	active, err := s.repo.GetActive(s.ctx)
	require.NoError(s.T(), err)

	adminID := uuid.New()
	for i := 1; i <= 3; i++ {
		rate := decimal.NewFromInt(int64(i)).Add(decimal.NewFromFloat(1.75))
		upd := models.PricingConfigUpdate{BaseRatePerMile: &rate}
		_, err := s.repo.Update(s.ctx, active.ID, upd, "bump", adminID)
		require.NoError(s.T(), err)
	}

	history, err := s.repo.GetHistory(s.ctx, active.ID, 2)
	require.NoError(s.T(), err)
	s.Require().Len(history, 2)

	// Последнее обновление (до 4.75) идет первым
	s.Equal("4.75", history[0].NewValues["base_rate_per_mile"])
	s.Equal("3.75", history[1].NewValues["base_rate_per_mile"])
}

func (s *RepositoryTestSuite) TestUpdateVersionConflict() {
	active, err := s.repo.GetActive(s.ctx)
	require.NoError(s.T(), err)

	// Конкурирующий writer: держим незакоммиченный bump версии. Update успевает
	// прочитать старую версию, а его CAS-запись виснет на блокировке строки.
	// После нашего commit условие WHERE version перепроверяется по новой версии,
	// CAS затрагивает 0 строк и Update обязан вернуть ErrVersionConflict.
	concurrentTx, err := s.pgPool.Begin(s.ctx)
	require.NoError(s.T(), err)
	_, err = concurrentTx.Exec(s.ctx,
		"UPDATE pricing_configs SET version = version + 1 WHERE id = $1", active.ID)
	require.NoError(s.T(), err)

	updateErr := make(chan error, 1)
	go func() {
		rate := decimal.NewFromFloat(2.50)
		upd := models.PricingConfigUpdate{BaseRatePerMile: &rate}
		_, err := s.repo.Update(s.ctx, active.ID, upd, "racing update", uuid.New())
		updateErr <- err
	}()

	// Даем Update дойти до CAS и встать на блокировке
	time.Sleep(300 * time.Millisecond)
	require.NoError(s.T(), concurrentTx.Commit(s.ctx))

	s.Require().ErrorIs(<-updateErr, models.ErrVersionConflict)

	// Проигравший не оставляет следов в истории
	history, err := s.repo.GetHistory(s.ctx, active.ID, 10)
	require.NoError(s.T(), err)
	s.Empty(history)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryTestSuite))
}
