package events

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/ecommerce-async/order-service/pkg/config"
)

// RabbitPublisher publishes order events to a direct exchange. The
// channel runs in confirm mode so PublishOrderCreated only returns nil
// once the broker has taken the message; it never waits for the
// consumer.
type RabbitPublisher struct {
    channel    *amqp.Channel
    exchange   string
    routingKey string
    timeout    time.Duration
    logger     *zap.Logger
}

// NewRabbitPublisher opens a channel and declares the topology: durable
// direct exchange, durable queue, binding by routing key. Declaring on
// the producer side makes the queue exist before the first publish, so
// a broker restart does not lose pending deliveries.
func NewRabbitPublisher(conn *amqp.Connection, cfg *config.Config, logger *zap.Logger) (*RabbitPublisher, error) {
    channel, err := conn.Channel()
    if err != nil {
        return nil, fmt.Errorf("failed to open channel: %w", err)
    }

    if err := channel.ExchangeDeclare(cfg.ExchangeName, "direct", true, false, false, false, nil); err != nil {
        return nil, fmt.Errorf("failed to declare exchange: %w", err)
    }

    if _, err := channel.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
        return nil, fmt.Errorf("failed to declare queue: %w", err)
    }

    if err := channel.QueueBind(cfg.QueueName, cfg.RoutingKey, cfg.ExchangeName, false, nil); err != nil {
        return nil, fmt.Errorf("failed to bind queue: %w", err)
    }

    if err := channel.Confirm(false); err != nil {
        return nil, fmt.Errorf("failed to put channel in confirm mode: %w", err)
    }

    logger.Info("RabbitMQ topology declared",
        zap.String("exchange", cfg.ExchangeName),
        zap.String("queue", cfg.QueueName),
        zap.String("routing_key", cfg.RoutingKey))

    return &RabbitPublisher{
        channel:    channel,
        exchange:   cfg.ExchangeName,
        routingKey: cfg.RoutingKey,
        timeout:    cfg.PublishTimeout,
        logger:     logger,
    }, nil
}

func (p *RabbitPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        p.logger.Error("Failed to marshal event",
            zap.Int64("order_id", event.OrderID),
            zap.Error(err))
        return fmt.Errorf("failed to marshal event: %w", err)
    }

    ctx, cancel := context.WithTimeout(ctx, p.timeout)
    defer cancel()

    confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
        p.exchange,
        p.routingKey,
        false, // mandatory
        false, // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            MessageId:    uuid.New().String(),
            Timestamp:    time.Now(),
            Body:         body,
        })
    if err != nil {
        p.logger.Error("Failed to publish message",
            zap.Int64("order_id", event.OrderID),
            zap.String("exchange", p.exchange),
            zap.Error(err))
        return err
    }

    acked, err := confirm.WaitContext(ctx)
    if err != nil {
        return fmt.Errorf("broker confirm wait failed: %w", err)
    }
    if !acked {
        return fmt.Errorf("broker rejected message for order %d", event.OrderID)
    }

    p.logger.Info("Event published successfully",
        zap.Int64("order_id", event.OrderID),
        zap.String("exchange", p.exchange),
        zap.String("routing_key", p.routingKey))

    return nil
}

func (p *RabbitPublisher) Close() error {
    if p.channel != nil {
        return p.channel.Close()
    }
    return nil
}
