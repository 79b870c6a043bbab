package services

import (
	"context"

	"catalog/internal/models"
)

// EventPublisher delivers product lifecycle events to interested parties.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// NoopPublisher drops every event. It is used when messaging is disabled.
type NoopPublisher struct{}

// PublishProductEvent implements EventPublisher.
func (NoopPublisher) PublishProductEvent(context.Context, models.ProductEvent) error {
	return nil
}
