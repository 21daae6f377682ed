package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/event"
)

// EventPublisher hands bill events to their subscribers without blocking the caller
type EventPublisher interface {
	Publish(ctx context.Context, evt *event.Event)
}
