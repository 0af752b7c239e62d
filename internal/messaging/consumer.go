package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drivedrop-pricing/internal/models"
	"drivedrop-pricing/internal/service"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConfigInvalidationConsumer слушает события об изменении конфигурации
// и сбрасывает кэш данного инстанса. Это ускоряет сходимость кэшей
// в multi-instance деплое: TTL остается запасным механизмом.
type ConfigInvalidationConsumer struct {
	conn        *amqp091.Connection
	ch          *amqp091.Channel
	cache       service.ConfigCache
	logger      *zap.Logger
	queueName   string
	consumerTag string
	done        chan error // Сигнал для остановки
}

// NewConfigInvalidationConsumer создает нового консьюмера.
func NewConfigInvalidationConsumer(
	conn *amqp091.Connection,
	cache service.ConfigCache,
	logger *zap.Logger,
) (*ConfigInvalidationConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("ConfigCache is nil")
	}

	consumerTag := fmt.Sprintf("pricing_config_consumer_%d", time.Now().UnixNano())

	consumer := &ConfigInvalidationConsumer{
		conn:        conn,
		cache:       cache,
		logger:      logger.Named("ConfigInvalidationConsumer").With(zap.String("consumerTag", consumerTag)),
		consumerTag: consumerTag,
		done:        make(chan error),
	}

	if err := consumer.setupChannelAndQueue(); err != nil {
		return nil, fmt.Errorf("failed to setup channel and queue: %w", err)
	}

	consumer.logger.Info("ConfigInvalidationConsumer initialized")
	return consumer, nil
}

// setupChannelAndQueue создает канал, объявляет exchange и привязывает
// эксклюзивную очередь этого инстанса.
func (c *ConfigInvalidationConsumer) setupChannelAndQueue() error {
	var err error
	c.ch, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := c.ch.ExchangeDeclare(
		ConfigEventsExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare exchange '%s': %w", ConfigEventsExchange, err)
	}

	// Эксклюзивная очередь с авто-именем: живет ровно столько, сколько инстанс
	q, err := c.ch.QueueDeclare(
		"",    // имя генерирует брокер
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	c.queueName = q.Name

	if err := c.ch.QueueBind(c.queueName, "", ConfigEventsExchange, false, nil); err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to bind queue '%s': %w", c.queueName, err)
	}

	c.logger.Info("RabbitMQ queue bound to config events exchange", zap.String("queue", c.queueName))
	return nil
}

// StartConsuming запускает получение и обработку сообщений.
// Блокирует до остановки консьюмера или ошибки канала.
func (c *ConfigInvalidationConsumer) StartConsuming() error {
	if c.ch == nil {
		return fmt.Errorf("channel is not initialized, call setupChannelAndQueue first")
	}
	c.logger.Info("Listening for pricing config events...")

	deliveries, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		true,  // auto-ack: потеря события некритична, TTL кэша подстрахует
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		c.logger.Error("Failed to start consumer", zap.Error(err))
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go c.handleDeliveries(deliveries)

	// Горутина для отслеживания закрытия канала
	go func() {
		notifyClose := make(chan *amqp091.Error)
		c.ch.NotifyClose(notifyClose)
		select {
		case err := <-notifyClose:
			if err != nil {
				c.logger.Error("RabbitMQ channel closed unexpectedly", zap.Error(err))
				c.done <- err
			} else {
				c.logger.Info("RabbitMQ channel closed gracefully.")
				c.done <- nil
			}
		case <-c.done: // Если Stop() был вызван раньше
			c.logger.Info("Received stop signal while waiting for channel close.")
		}
	}()

	c.logger.Info("Consumer started", zap.String("tag", c.consumerTag))
	return <-c.done
}

// handleDeliveries обрабатывает входящие события.
func (c *ConfigInvalidationConsumer) handleDeliveries(deliveries <-chan amqp091.Delivery) {
	for d := range deliveries {
		log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))

		var event models.ConfigUpdatedEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Warn("Failed to unmarshal config updated event, skipping", zap.Error(err))
			continue
		}

		log = log.With(zap.String("configID", event.ConfigID.String()), zap.Int("version", event.Version))

		// Сброс кэша идемпотентен: событие от самого себя тоже безопасно
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.cache.Invalidate(ctx)
		cancel()

		if err != nil {
			// Не переотправляем: кэш невалидируется по TTL и без нас
			log.Error("Failed to invalidate config cache on event", zap.Error(err))
		} else {
			log.Debug("Config cache invalidated on event")
		}
	}
	c.logger.Info("Deliveries channel closed, message handling finished.")
	select {
	case c.done <- nil:
	default:
	}
}

// Stop останавливает консьюмера и закрывает канал.
func (c *ConfigInvalidationConsumer) Stop() error {
	c.logger.Info("Stopping consumer...")
	if c.ch != nil {
		if err := c.ch.Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("Failed to cancel consumer", zap.Error(err))
		}
		if err := c.ch.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	select {
	case c.done <- nil:
	default:
	}
	return nil
}
