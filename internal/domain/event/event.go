package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Event is something that happened to a bill
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	BillID    string                 `json:"bill_id"`
	Email     string                 `json:"email"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates an event with a generated ID and the current time
func NewEvent(eventType Type, bill *entity.Bill, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	e := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	if bill != nil {
		e.BillID = bill.ID
		e.Email = bill.Email
	}
	return e
}

// BillCreated builds the event emitted after an employee submits a bill
func BillCreated(bill *entity.Bill) *Event {
	return NewEvent(TypeBillCreated, bill, map[string]interface{}{
		"amount": bill.Amount.String(),
		"type":   bill.Type,
	})
}

// BillReviewed builds the event emitted after an administrator decides on a bill
func BillReviewed(bill *entity.Bill) *Event {
	return NewEvent(TypeBillReviewed, bill, map[string]interface{}{
		"status":  string(bill.Status),
		"comment": bill.CommentAdmin,
	})
}

// WithPayload returns a copy of the event with key set in its payload
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
