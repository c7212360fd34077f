package domain

import (
	"time"
)

type Order struct {
    ID           int64     `json:"id"`
    CustomerName string    `json:"customer_name"`
    Product      string    `json:"product"`
    Amount       float64   `json:"amount"`
    CreatedAt    time.Time `json:"created_at"`
}

type CreateOrderRequest struct {
    CustomerName string  `json:"customerName" binding:"required"`
    Product      string  `json:"product"      binding:"required"`
    Amount       float64 `json:"amount"       binding:"required,gt=0"`
}

type OrderResponse struct {
    OrderID      int64     `json:"orderId"`
    CustomerName string    `json:"customerName"`
    Product      string    `json:"product"`
    Amount       float64   `json:"amount"`
    CreatedAt    time.Time `json:"createdAt"`
}
