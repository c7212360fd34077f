package events

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ecommerce-async/order-service/pkg/config"
)

// Dispatcher turns one order event into notification output. Implemented
// by the notification service; re-dispatching the same event is safe, it
// only produces duplicate notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, event OrderCreatedEvent) error
}

// RabbitConsumer drains the orders queue with manual acknowledgments.
// Per message: Ack after the dispatcher succeeds, Nack with requeue when
// it fails, Reject without requeue for bodies that cannot be decoded.
// Redelivery limits and dead-lettering are broker configuration, not
// handled here.
type RabbitConsumer struct {
	channel    *amqp.Channel
	queue      string
	dispatcher Dispatcher
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewRabbitConsumer(conn *amqp.Connection, cfg *config.Config, dispatcher Dispatcher, logger *zap.Logger) (*RabbitConsumer, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declared on both sides so either process can start first.
	if _, err := channel.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.Qos(cfg.ConsumerPrefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RabbitConsumer{
		channel:    channel,
		queue:      cfg.QueueName,
		dispatcher: dispatcher,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}, nil
}

func (c *RabbitConsumer) Start() error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag, broker-generated
		false, // autoAck off, we decide per message
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Consumer started, waiting for messages",
		zap.String("queue", c.queue))

	go c.consume(deliveries)
	return nil
}

func (c *RabbitConsumer) consume(deliveries <-chan amqp.Delivery) {
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("Consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("Delivery channel closed by broker")
				return
			}
			c.handleDelivery(c.ctx, d)
		}
	}
}

// handleDelivery owns the ack decision for one message. A dispatcher
// panic is treated like a processing failure so one bad message cannot
// take the consumer down.
func (c *RabbitConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("Panic while processing message, requeueing",
				zap.Any("panic", rec),
				zap.String("message_id", d.MessageId))
			if err := d.Nack(false, true); err != nil {
				c.logger.Error("Failed to nack message", zap.Error(err))
			}
		}
	}()

	event, err := DecodeOrderCreatedEvent(d.Body)
	if err != nil {
		// Poison message. Requeueing would loop forever, so drop it
		// (or dead-letter it, if the queue has a DLX configured).
		c.logger.Error("Rejecting undecodable message",
			zap.String("message_id", d.MessageId),
			zap.ByteString("body", d.Body),
			zap.Error(err))
		if err := d.Reject(false); err != nil {
			c.logger.Error("Failed to reject message", zap.Error(err))
		}
		return
	}

	c.logger.Info("Message received",
		zap.Int64("order_id", event.OrderID),
		zap.String("customer_name", event.CustomerName),
		zap.Bool("redelivered", d.Redelivered))

	if err := c.dispatcher.Dispatch(ctx, event); err != nil {
		c.logger.Error("Failed to process message, requeueing",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
		if err := d.Nack(false, true); err != nil {
			c.logger.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("Failed to ack message",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
		return
	}

	c.logger.Info("Message processed successfully",
		zap.Int64("order_id", event.OrderID))
}

// Stop cancels the consume loop and closes the channel. Unacked
// in-flight messages go back to the queue.
func (c *RabbitConsumer) Stop() {
	c.logger.Info("Stopping consumer")
	c.cancel()
	if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		c.logger.Error("Failed to close channel", zap.Error(err))
	}
	<-c.done
}
