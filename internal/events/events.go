package events

import (
    "encoding/json"
    "errors"
    "fmt"
)

var ErrMalformedEvent = errors.New("malformed event")

// OrderCreatedEvent is the wire contract between order-service and the
// notification consumer. Field names are fixed; consumers match by name,
// never by position.
type OrderCreatedEvent struct {
    OrderID      int64   `json:"orderId"`
    CustomerName string  `json:"customerName"`
    Product      string  `json:"product"`
    Amount       float64 `json:"amount"`
}

// wireEvent uses pointers so a missing field can be told apart from a
// zero value during decode.
type wireEvent struct {
    OrderID      *int64   `json:"orderId"`
    CustomerName *string  `json:"customerName"`
    Product      *string  `json:"product"`
    Amount       *float64 `json:"amount"`
}

// DecodeOrderCreatedEvent parses a message body. Unknown fields are
// ignored for forward compatibility; a missing or empty required field
// makes the message poison and is reported as ErrMalformedEvent.
func DecodeOrderCreatedEvent(body []byte) (OrderCreatedEvent, error) {
    var wire wireEvent
    if err := json.Unmarshal(body, &wire); err != nil {
        return OrderCreatedEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
    }

    switch {
    case wire.OrderID == nil:
        return OrderCreatedEvent{}, fmt.Errorf("%w: missing orderId", ErrMalformedEvent)
    case wire.CustomerName == nil || *wire.CustomerName == "":
        return OrderCreatedEvent{}, fmt.Errorf("%w: missing customerName", ErrMalformedEvent)
    case wire.Product == nil || *wire.Product == "":
        return OrderCreatedEvent{}, fmt.Errorf("%w: missing product", ErrMalformedEvent)
    case wire.Amount == nil:
        return OrderCreatedEvent{}, fmt.Errorf("%w: missing amount", ErrMalformedEvent)
    }

    return OrderCreatedEvent{
        OrderID:      *wire.OrderID,
        CustomerName: *wire.CustomerName,
        Product:      *wire.Product,
        Amount:       *wire.Amount,
    }, nil
}
