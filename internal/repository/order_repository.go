package repository

import (
    "context"
    "errors"
    "sync"

    "github.com/ecommerce-async/order-service/internal/domain"
)

var (
    ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository keeps orders in memory. It stands in for a database:
// orders do not survive a process restart. IDs start at 1 and are never
// reused, even after deletion.
type OrderRepository struct {
    mu     sync.RWMutex
    orders map[int64]domain.Order
    nextID int64
}

func NewOrderRepository() *OrderRepository {
    return &OrderRepository{
        orders: make(map[int64]domain.Order),
        nextID: 1,
    }
}

// Save assigns the next ID and inserts the order. Allocation and insert
// happen under one lock so concurrent callers never share an ID.
func (r *OrderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
    r.mu.Lock()
    defer r.mu.Unlock()

    order.ID = r.nextID
    r.nextID++
    r.orders[order.ID] = order

    return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()

    order, ok := r.orders[id]
    if !ok {
        return domain.Order{}, ErrOrderNotFound
    }
    return order, nil
}

// FindAll returns a snapshot copy. Orders inserted after the copy begins
// are not observed.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()

    all := make([]domain.Order, 0, len(r.orders))
    for _, order := range r.orders {
        all = append(all, order)
    }
    return all, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()

    return int64(len(r.orders)), nil
}

// DeleteByID removes one order. Used for test cleanup, not part of the
// order flow.
func (r *OrderRepository) DeleteByID(ctx context.Context, id int64) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    if _, ok := r.orders[id]; !ok {
        return ErrOrderNotFound
    }
    delete(r.orders, id)
    return nil
}

// DeleteAll clears the store. The ID counter keeps its position.
func (r *OrderRepository) DeleteAll(ctx context.Context) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    r.orders = make(map[int64]domain.Order)
    return nil
}
