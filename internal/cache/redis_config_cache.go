package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"drivedrop-pricing/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ключ единственный: активная конфигурация одна на всю платформу.
const activeConfigKey = "pricing:active_config"

var cacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pricing_config_cache_requests_total",
		Help: "Total number of active config cache lookups by result.",
	},
	[]string{"result"}, // hit | miss | error
)

type redisConfigCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisConfigCache создает Redis-кэш активной конфигурации ценообразования.
// Кэш - чистая оптимизация: любая ошибка Redis трактуется как промах,
// и чтение уходит напрямую в хранилище.
func NewRedisConfigCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *redisConfigCache {
	return &redisConfigCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisConfigCache"),
	}
}

// GetOrLoad возвращает закэшированную конфигурацию либо загружает ее через loader
// и кладет в кэш с TTL. Ошибка записи в кэш не мешает вернуть загруженное значение.
func (c *redisConfigCache) GetOrLoad(ctx context.Context, loader func(context.Context) (*models.PricingConfig, error)) (*models.PricingConfig, error) {
	raw, err := c.client.Get(ctx, activeConfigKey).Bytes()
	if err == nil {
		var config models.PricingConfig
		if unmarshalErr := json.Unmarshal(raw, &config); unmarshalErr == nil {
			cacheRequestsTotal.WithLabelValues("hit").Inc()
			return &config, nil
		}
		// Битая запись в кэше: логируем и перечитываем из хранилища
		c.logger.Warn("Failed to unmarshal cached pricing config, falling through to store")
		cacheRequestsTotal.WithLabelValues("error").Inc()
	} else if errors.Is(err, redis.Nil) {
		cacheRequestsTotal.WithLabelValues("miss").Inc()
	} else {
		c.logger.Warn("Redis unavailable for config cache read, falling through to store", zap.Error(err))
		cacheRequestsTotal.WithLabelValues("error").Inc()
	}

	config, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	if raw, marshalErr := json.Marshal(config); marshalErr == nil {
		if setErr := c.client.Set(ctx, activeConfigKey, raw, c.ttl).Err(); setErr != nil {
			c.logger.Warn("Failed to store pricing config in cache", zap.Error(setErr))
		}
	}

	return config, nil
}

// Invalidate немедленно удаляет закэшированную конфигурацию.
// Вызывается после каждого успешного админского обновления и из AMQP consumer'а.
func (c *redisConfigCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, activeConfigKey).Err(); err != nil {
		c.logger.Error("Failed to invalidate pricing config cache", zap.Error(err))
		return err
	}
	c.logger.Debug("Pricing config cache invalidated")
	return nil
}
