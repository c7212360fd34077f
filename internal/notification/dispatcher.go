package notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ecommerce-async/order-service/internal/events"
)

// ErrInvalidAmount means the event carried a non-finite amount. That is
// an upstream contract violation, so rendering fails loudly instead of
// substituting a default.
var ErrInvalidAmount = errors.New("invalid notification amount")

const timestampLayout = "02/01/2006 15:04:05"

// Messages holds the three notification representations rendered from
// one event. All three share the timestamp captured at render time.
type Messages struct {
	Email string
	SMS   string
	Push  string
}

// Dispatcher simulates the delivery channels by logging what would be
// sent. It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	logger  *zap.Logger
	printer *message.Printer
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		// Amounts are shown the way the storefront does, in pt-BR
		// currency format ("R$ 199,90").
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// Render builds the three representations deterministically from the
// event and the given processing timestamp.
func (d *Dispatcher) Render(event events.OrderCreatedEvent, processedAt time.Time) (Messages, error) {
	if math.IsNaN(event.Amount) || math.IsInf(event.Amount, 0) {
		return Messages{}, fmt.Errorf("%w: order %d", ErrInvalidAmount, event.OrderID)
	}

	amount := d.printer.Sprintf("R$ %.2f", event.Amount)
	timestamp := processedAt.Format(timestampLayout)

	email := fmt.Sprintf(
		"Subject: Order Confirmation #%d | To: %s <customer@email.com> | Your order of %s for %s was confirmed! | %s",
		event.OrderID, event.CustomerName, event.Product, amount, timestamp)

	sms := fmt.Sprintf(
		"Hello %s! Order #%d (%s) confirmed. Amount: %s",
		event.CustomerName, event.OrderID, event.Product, amount)

	push := fmt.Sprintf(
		"Order Confirmed! %s - %s by %s",
		event.Product, amount, event.CustomerName)

	return Messages{Email: email, SMS: sms, Push: push}, nil
}

// Dispatch renders and emits all three notifications for one event.
// Called once per delivery, possibly more than once for the same order
// under broker redelivery.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.OrderCreatedEvent) error {
	msgs, err := d.Render(event, time.Now())
	if err != nil {
		d.logger.Error("Failed to render notifications",
			zap.Int64("order_id", event.OrderID),
			zap.Float64("amount", event.Amount),
			zap.Error(err))
		return err
	}

	d.logger.Info("Order notification received",
		zap.Int64("order_id", event.OrderID),
		zap.String("customer_name", event.CustomerName))

	d.logger.Info("Sending email", zap.String("content", msgs.Email))
	d.logger.Info("Sending SMS", zap.String("content", msgs.SMS))
	d.logger.Info("Sending push notification", zap.String("content", msgs.Push))

	return nil
}
