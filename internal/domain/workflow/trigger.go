package workflow

import (
	"fmt"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Trigger is an administrator decision on a bill
type Trigger string

const (
	TriggerAccept Trigger = "accept"
	TriggerRefuse Trigger = "refuse"
)

func (t Trigger) String() string {
	return string(t)
}

// TriggerFor maps the status an administrator picked to the trigger that reaches it
func TriggerFor(status entity.BillStatus) (Trigger, error) {
	switch status {
	case entity.BillStatusAccepted:
		return TriggerAccept, nil
	case entity.BillStatusRefused:
		return TriggerRefuse, nil
	default:
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidStatus, status)
	}
}
