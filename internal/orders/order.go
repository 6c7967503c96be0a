package orders

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Order is an immutable snapshot of a cart at checkout time.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	UserID        string      `json:"userId"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
