package workflow

import (
	"fmt"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Lifecycle holds the permitted review transitions between bill statuses
type Lifecycle struct {
	transitions map[entity.BillStatus]map[Trigger]entity.BillStatus
}

// Builder configures a Lifecycle
type Builder struct {
	transitions map[entity.BillStatus]map[Trigger]entity.BillStatus
}

// NewBuilder creates an empty lifecycle builder
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[entity.BillStatus]map[Trigger]entity.BillStatus)}
}

// Permit allows trigger to move a bill from one status to another.
// Panics on unknown statuses since lifecycles are configured at startup.
func (b *Builder) Permit(from entity.BillStatus, trigger Trigger, to entity.BillStatus) *Builder {
	if !from.Valid() {
		panic(fmt.Sprintf("invalid state: %s", from))
	}
	if !to.Valid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	if b.transitions[from] == nil {
		b.transitions[from] = make(map[Trigger]entity.BillStatus)
	}
	b.transitions[from][trigger] = to
	return b
}

// Build returns an immutable copy of the configured transitions
func (b *Builder) Build() *Lifecycle {
	copied := make(map[entity.BillStatus]map[Trigger]entity.BillStatus, len(b.transitions))
	for from, byTrigger := range b.transitions {
		inner := make(map[Trigger]entity.BillStatus, len(byTrigger))
		for trigger, to := range byTrigger {
			inner[trigger] = to
		}
		copied[from] = inner
	}
	return &Lifecycle{transitions: copied}
}

// ReviewLifecycle is the bill review flow: only pending bills get decided
func ReviewLifecycle() *Lifecycle {
	return NewBuilder().
		Permit(entity.BillStatusPending, TriggerAccept, entity.BillStatusAccepted).
		Permit(entity.BillStatusPending, TriggerRefuse, entity.BillStatusRefused).
		Build()
}

// CanFire reports whether trigger is permitted from status
func (l *Lifecycle) CanFire(status entity.BillStatus, trigger Trigger) bool {
	_, ok := l.transitions[status][trigger]
	return ok
}

// Fire returns the status reached by applying trigger to status
func (l *Lifecycle) Fire(status entity.BillStatus, trigger Trigger) (entity.BillStatus, error) {
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, status)
	}
	to, ok := l.transitions[status][trigger]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a bill in state %s", ErrInvalidTransition, trigger, status)
	}
	return to, nil
}

// PermittedTriggers lists the triggers available from status in a stable order
func (l *Lifecycle) PermittedTriggers(status entity.BillStatus) []Trigger {
	triggers := make([]Trigger, 0, 2)
	for _, t := range []Trigger{TriggerAccept, TriggerRefuse} {
		if l.CanFire(status, t) {
			triggers = append(triggers, t)
		}
	}
	return triggers
}

// IsTerminal reports whether no trigger can leave status
func (l *Lifecycle) IsTerminal(status entity.BillStatus) bool {
	return len(l.transitions[status]) == 0
}
