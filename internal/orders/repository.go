package orders

import (
	"errors"
	"time"
)

var ErrDuplicateOrderNumber = errors.New("order number already exists")

// OutboxEvent is a pending event row written in the same transaction as its
// order and published asynchronously by the poller.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}
