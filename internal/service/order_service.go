package service

import (
    "context"
    "errors"
    "fmt"
    "math"
    "strings"
    "time"

    "go.uber.org/zap"

    "github.com/ecommerce-async/order-service/internal/domain"
    "github.com/ecommerce-async/order-service/internal/events"
    "github.com/ecommerce-async/order-service/internal/repository"
)

var (
    ErrOrderNotFound = errors.New("order not found")

    // ErrEventPublish marks a create-order call whose order was stored
    // but whose event never reached the broker. The order is not rolled
    // back; readers can already see it.
    ErrEventPublish = errors.New("failed to publish order event")
)

// ValidationError reports which request field was rejected.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EventPublisher hands an order-created event to the broker. Returning
// nil means the broker took the message, not that anyone consumed it.
type EventPublisher interface {
    PublishOrderCreated(ctx context.Context, event events.OrderCreatedEvent) error
}

type OrderService struct {
    orderRepo *repository.OrderRepository
    publisher EventPublisher
    logger    *zap.Logger
}

func NewOrderService(orderRepo *repository.OrderRepository, publisher EventPublisher, logger *zap.Logger) *OrderService {
    return &OrderService{
        orderRepo: orderRepo,
        publisher: publisher,
        logger:    logger,
    }
}

// CreateOrder stores the order first, then publishes the event built
// from the stored copy. If the publish fails the stored order stays: an
// order recorded without a notification beats a notification for an
// order that does not exist.
func (s *OrderService) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
    if err := validateCreateRequest(req); err != nil {
        return domain.OrderResponse{}, err
    }

    order := domain.Order{
        CustomerName: req.CustomerName,
        Product:      req.Product,
        Amount:       req.Amount,
        CreatedAt:    time.Now(),
    }

    saved, err := s.orderRepo.Save(ctx, order)
    if err != nil {
        s.logger.Error("Failed to save order",
            zap.String("customer_name", req.CustomerName),
            zap.Error(err))
        return domain.OrderResponse{}, err
    }

    s.logger.Info("Order saved",
        zap.Int64("order_id", saved.ID),
        zap.String("customer_name", saved.CustomerName))

    event := events.OrderCreatedEvent{
        OrderID:      saved.ID,
        CustomerName: saved.CustomerName,
        Product:      saved.Product,
        Amount:       saved.Amount,
    }

    if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
        s.logger.Error("Order stored but event publish failed",
            zap.Int64("order_id", saved.ID),
            zap.Error(err))
        return toResponse(saved), fmt.Errorf("%w: %v", ErrEventPublish, err)
    }

    return toResponse(saved), nil
}

func (s *OrderService) FindByID(ctx context.Context, id int64) (domain.OrderResponse, error) {
    order, err := s.orderRepo.FindByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrOrderNotFound) {
            return domain.OrderResponse{}, ErrOrderNotFound
        }
        return domain.OrderResponse{}, err
    }
    return toResponse(order), nil
}

func (s *OrderService) FindAll(ctx context.Context) ([]domain.OrderResponse, error) {
    orders, err := s.orderRepo.FindAll(ctx)
    if err != nil {
        return nil, err
    }

    responses := make([]domain.OrderResponse, 0, len(orders))
    for _, order := range orders {
        responses = append(responses, toResponse(order))
    }
    return responses, nil
}

func (s *OrderService) Count(ctx context.Context) (int64, error) {
    return s.orderRepo.Count(ctx)
}

// The HTTP layer already validates the request body, but the service
// does not trust that.
func validateCreateRequest(req domain.CreateOrderRequest) error {
    if strings.TrimSpace(req.CustomerName) == "" {
        return &ValidationError{Field: "customerName", Reason: "must not be empty"}
    }
    if strings.TrimSpace(req.Product) == "" {
        return &ValidationError{Field: "product", Reason: "must not be empty"}
    }
    if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
        return &ValidationError{Field: "amount", Reason: "must be a positive number"}
    }
    return nil
}

func toResponse(order domain.Order) domain.OrderResponse {
    return domain.OrderResponse{
        OrderID:      order.ID,
        CustomerName: order.CustomerName,
        Product:      order.Product,
        Amount:       order.Amount,
        CreatedAt:    order.CreatedAt,
    }
}
