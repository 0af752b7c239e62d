package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"drivedrop-pricing/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConfigEventsExchange - fanout exchange для событий об изменении конфигурации
// ценообразования. Каждый инстанс сервиса держит на нем свою эксклюзивную очередь.
const ConfigEventsExchange = "pricing.config.events"

type rabbitMQConfigEventPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// NewRabbitMQConfigEventPublisher создает паблишер событий конфигурации.
// Exchange объявляется здесь, чтобы гарантировать его существование
// (параметры должны совпадать с consumer'ом: fanout, durable).
func NewRabbitMQConfigEventPublisher(conn *amqp.Connection, logger *zap.Logger) (*rabbitMQConfigEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("config event publisher: failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ConfigEventsExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("config event publisher: failed to declare exchange '%s': %w", ConfigEventsExchange, err)
	}

	logger.Info("RabbitMQ config event publisher initialized", zap.String("exchange", ConfigEventsExchange))
	return &rabbitMQConfigEventPublisher{
		conn:    conn,
		channel: ch,
		logger:  logger.Named("ConfigEventPublisher"),
	}, nil
}

// PublishConfigUpdated публикует событие об успешном обновлении конфигурации.
func (p *rabbitMQConfigEventPublisher) PublishConfigUpdated(ctx context.Context, event models.ConfigUpdatedEvent) error {
	if p.channel == nil {
		p.logger.Error("RabbitMQ channel is not initialized (nil)")
		return errors.New("rabbitmq channel is not initialized")
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal ConfigUpdatedEvent",
			zap.String("configID", event.ConfigID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to marshal config updated event: %w", err)
	}

	// Таймаут на публикацию
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		ConfigEventsExchange,
		"",    // routing key не используется для fanout
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient, // событие ценно только "сейчас", переживать рестарт брокера не обязано
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish ConfigUpdatedEvent", zap.Error(err))
		return fmt.Errorf("failed to publish config updated event: %w", err)
	}

	p.logger.Debug("ConfigUpdatedEvent published",
		zap.String("configID", event.ConfigID.String()),
		zap.Int("version", event.Version),
	)
	return nil
}

// Close закрывает канал паблишера.
func (p *rabbitMQConfigEventPublisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
