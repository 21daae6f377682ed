package dispatcher

import (
	"context"

	"github.com/garyjia/billed/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo names a subscribed handler
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}

// AuditLogHandler writes every bill event to the logger
func AuditLogHandler(logger Logger) Handler {
	return func(_ context.Context, evt *event.Event) error {
		logger.Info("Bill event",
			"event_type", evt.Type,
			"event_id", evt.ID,
			"bill_id", evt.BillID,
			"email", evt.Email,
			"payload", evt.Payload,
		)
		return nil
	}
}
