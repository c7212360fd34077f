package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ecommerce-async/order-service/pkg/config"
	brokertls "github.com/ecommerce-async/order-service/pkg/tls"
)

// Dial connects to the broker, with mTLS when enabled. Both binaries go
// through here so they fail the same way when the broker is down.
func Dial(cfg *config.Config, logger *zap.Logger) (*amqp.Connection, error) {
	tlsConfig, err := brokertls.LoadBrokerTLSConfig(&cfg.TLS, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load broker TLS config: %w", err)
	}

	var conn *amqp.Connection
	if tlsConfig != nil {
		conn, err = amqp.DialTLS(cfg.AMQPURL, tlsConfig)
	} else {
		conn, err = amqp.Dial(cfg.AMQPURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	logger.Info("Connected to RabbitMQ")
	return conn, nil
}
