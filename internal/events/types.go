package events

import (
	"time"

	"github.com/imrishuroy/go-order-triage/internal/orders"
)

// TypeOrderCreated is the only event type this service publishes.
const TypeOrderCreated = "OrderCreated"

// OrderDetail is the order snapshot carried inside an OrderCreated event.
type OrderDetail struct {
	ID           string        `json:"id"`
	CustomerName string        `json:"customerName"`
	Items        []orders.Item `json:"items"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Envelope is the wire shape of a lifecycle event. Detail is a pointer so
// consumers can tell a missing detail block from an empty one.
type Envelope struct {
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Detail    *OrderDetail `json:"detail"`
}
