package models

import "time"

// Product lifecycle event types. They double as AMQP routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent is published after a product mutation has been committed.
type ProductEvent struct {
	Type       string    `json:"type"`
	Product    Product   `json:"product"`
	OccurredAt time.Time `json:"occurredAt"`
}
