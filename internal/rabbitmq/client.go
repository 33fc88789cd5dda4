package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/GoArmGo/TaskManager/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ.
// Реализует ports.EventPublisher и ports.EventConsumer.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger}

	// Подключение к RabbitMQ
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	// Открытие канала
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// Объявление очереди идемпотентно: создаётся, если её ещё нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	logger.Info("rabbitmq connected", "queue", q.Name, "messages", q.Messages)
	return client, nil
}

// Close закрывает канал и соединение RabbitMQ
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	c.logger.Info("rabbitmq connection closed")
	return errors.Join(errs...)
}

// PublishEvent публикует событие в очередь как JSON
func (c *Client) PublishEvent(ctx context.Context, event payloads.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	c.logger.Debug("event published", "queue", c.queue.Name, "type", event.Type, "event_id", event.ID)
	return nil
}

// StartConsumingEvents регистрирует потребителя и обрабатывает сообщения в
// отдельной горутине до отмены ctx или закрытия канала.
func (c *Client) StartConsumingEvents(ctx context.Context, handler func(context.Context, payloads.Event) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack: подтверждаем вручную
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("rabbitmq channel closed, stopping consumer")
					return
				}
				processDelivery(ctx, msg, handler, c.logger)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping rabbitmq consumer")
				return
			}
		}
	}()

	return nil
}

// processDelivery разбирает одно сообщение и подтверждает его.
// Битое сообщение отбрасывается без возврата в очередь, ошибка обработчика
// возвращает сообщение в очередь.
func processDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.Event) error, logger *slog.Logger) {
	var event payloads.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.Type == "" {
		logger.Error("malformed message, dropping", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		logger.Error("event processing failed, requeueing", "event_id", event.ID, "type", event.Type, "error", err)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("failed to ack message", "event_id", event.ID, "error", err)
		return
	}
	logger.Debug("event processed and acked", "event_id", event.ID, "type", event.Type)
}
