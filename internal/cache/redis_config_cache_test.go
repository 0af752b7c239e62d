package cache_test // Используем _test пакет для изоляции

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"drivedrop-pricing/internal/cache"
	"drivedrop-pricing/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const activeConfigKey = "pricing:active_config"

// CacheTestSuite поднимает реальный Redis в контейнере: поведение кэша при
// промахах, битых записях и недоступном бэкенде проверяется без моков.
type CacheTestSuite struct {
	suite.Suite
	ctx         context.Context
	rdContainer *tcredis.RedisContainer
	redisClient *redis.Client
	logger      *zap.Logger
}

func (s *CacheTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.redisClient = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	_, err = s.redisClient.Ping(s.ctx).Result()
	require.NoError(s.T(), err, "Failed to connect to test redis")
}

func (s *CacheTestSuite) TearDownSuite() {
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate redis container", zap.Error(err))
		}
	}
}

func (s *CacheTestSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err(), "Failed to flush Redis DB")
}

// loaderReturning считает вызовы, чтобы отличать попадание в кэш от загрузки.
func loaderReturning(cfg *models.PricingConfig, callCount *int) func(context.Context) (*models.PricingConfig, error) {
	return func(context.Context) (*models.PricingConfig, error) {
		*callCount++
		return cfg, nil
	}
}

func storedTestConfig(version int) *models.PricingConfig {
	cfg := models.DefaultPricingConfig()
	cfg.ID = uuid.New()
	cfg.Version = version
	return cfg
}

func (s *CacheTestSuite) TestMissLoadsAndStores() {
	c := cache.NewRedisConfigCache(s.redisClient, time.Minute, s.logger)

	cfg := storedTestConfig(3)
	calls := 0

	got, err := c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls))
	require.NoError(s.T(), err)
	s.Equal(3, got.Version)
	s.Equal(1, calls)

	// Промах положил значение в кэш с TTL
	ttl, err := s.redisClient.TTL(s.ctx, activeConfigKey).Result()
	require.NoError(s.T(), err)
	s.Greater(ttl, time.Duration(0))
}

func (s *CacheTestSuite) TestHitSkipsLoader() {
	c := cache.NewRedisConfigCache(s.redisClient, time.Minute, s.logger)

	cfg := storedTestConfig(5)
	calls := 0

	_, err := c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls))
	require.NoError(s.T(), err)

	got, err := c.GetOrLoad(s.ctx, func(context.Context) (*models.PricingConfig, error) {
		s.Fail("loader must not be called on cache hit")
		return nil, errors.New("unreachable")
	})
	require.NoError(s.T(), err)
	s.Equal(5, got.Version)
	s.Equal(cfg.ID, got.ID)
	s.True(got.BaseRatePerMile.Equal(decimal.NewFromFloat(1.75)))
	s.Equal(1, calls)
}

func (s *CacheTestSuite) TestCorruptEntryFallsThroughToLoader() {
	c := cache.NewRedisConfigCache(s.redisClient, time.Minute, s.logger)

	require.NoError(s.T(), s.redisClient.Set(s.ctx, activeConfigKey, "{not json", time.Minute).Err())

	cfg := storedTestConfig(4)
	calls := 0

	got, err := c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls))
	require.NoError(s.T(), err)
	s.Equal(4, got.Version)
	s.Equal(1, calls)

	// Битая запись перезаписана валидной
	calls2 := 0
	again, err := c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls2))
	require.NoError(s.T(), err)
	s.Equal(4, again.Version)
	s.Equal(0, calls2)
}

func (s *CacheTestSuite) TestRedisDownDegradesToLoader() {
	// Клиент на закрытый порт: и чтение, и запись в кэш будут падать,
	// но результат loader'а обязан дойти до вызывающего кода
	deadClient := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer deadClient.Close()

	c := cache.NewRedisConfigCache(deadClient, time.Minute, s.logger)

	cfg := storedTestConfig(6)
	calls := 0

	got, err := c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls))
	require.NoError(s.T(), err)
	s.Equal(6, got.Version)
	s.Equal(1, calls)
}

func (s *CacheTestSuite) TestLoaderErrorPropagates() {
	c := cache.NewRedisConfigCache(s.redisClient, time.Minute, s.logger)

	_, err := c.GetOrLoad(s.ctx, func(context.Context) (*models.PricingConfig, error) {
		return nil, models.ErrActiveConfigNotFound
	})
	s.Require().ErrorIs(err, models.ErrActiveConfigNotFound)

	// Ошибка загрузки не кэшируется
	exists, err := s.redisClient.Exists(s.ctx, activeConfigKey).Result()
	require.NoError(s.T(), err)
	s.Equal(int64(0), exists)
}

func (s *CacheTestSuite) TestInvalidateThenReadIsNeverStale() {
	c := cache.NewRedisConfigCache(s.redisClient, time.Minute, s.logger)

	stale := storedTestConfig(1)
	calls := 0
	_, err := c.GetOrLoad(s.ctx, loaderReturning(stale, &calls))
	require.NoError(s.T(), err)

	require.NoError(s.T(), c.Invalidate(s.ctx))

	// Сразу после Invalidate чтение обязано уйти в loader за свежей версией
	fresh := storedTestConfig(2)
	freshCalls := 0
	got, err := c.GetOrLoad(s.ctx, loaderReturning(fresh, &freshCalls))
	require.NoError(s.T(), err)
	s.Equal(2, got.Version)
	s.Equal(1, freshCalls)
}

func (s *CacheTestSuite) TestEntryExpiresByTTL() {
	c := cache.NewRedisConfigCache(s.redisClient, 500*time.Millisecond, s.logger)

	cfg := storedTestConfig(1)
	calls := 0
	_, err := c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls))
	require.NoError(s.T(), err)

	time.Sleep(700 * time.Millisecond)

	_, err = c.GetOrLoad(s.ctx, loaderReturning(cfg, &calls))
	require.NoError(s.T(), err)
	s.Equal(2, calls, "expired entry must be reloaded")
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(CacheTestSuite))
}
