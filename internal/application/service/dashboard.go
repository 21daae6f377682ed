package service

import (
	"context"
	"fmt"

	"github.com/garyjia/billed/internal/application/format"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// Dashboard lets administrators review bills
type Dashboard struct {
	store      port.Store
	logger     Logger
	formatDate DateFormatter
	lifecycle  *workflow.Lifecycle
	events     port.EventPublisher
}

// NewDashboard creates a Dashboard container
func NewDashboard(store port.Store, logger Logger) *Dashboard {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Dashboard{
		store:      store,
		logger:     logger,
		formatDate: format.Date,
		lifecycle:  workflow.ReviewLifecycle(),
	}
}

// WithEvents publishes a bill.reviewed event after every decision
func (d *Dashboard) WithEvents(events port.EventPublisher) *Dashboard {
	d.events = events
	return d
}

// ListByStatus returns the formatted bills grouped by status
func (d *Dashboard) ListByStatus(ctx context.Context) (map[entity.BillStatus][]FormattedBill, error) {
	bills, err := d.store.Bills().List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[entity.BillStatus][]FormattedBill, len(entity.BillStatuses()))
	for _, fb := range FormatBills(bills, d.formatDate, d.logger) {
		grouped[fb.Bill.Status] = append(grouped[fb.Bill.Status], fb)
	}
	return grouped, nil
}

// Decide accepts or refuses a bill with an optional admin comment
func (d *Dashboard) Decide(ctx context.Context, id string, status entity.BillStatus, comment string) (*entity.Bill, error) {
	trigger, err := workflow.TriggerFor(status)
	if err != nil {
		return nil, err
	}

	bills, err := d.store.Bills().List(ctx)
	if err != nil {
		return nil, err
	}

	var target *entity.Bill
	for i := range bills {
		if bills[i].ID == id {
			target = &bills[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrBillNotFound, id)
	}

	next, err := d.lifecycle.Fire(target.Status, trigger)
	if err != nil {
		d.logger.Info("Rejected review", "id", id, "from", target.Status, "trigger", trigger)
		return nil, err
	}

	target.Status = next
	target.CommentAdmin = comment
	if err := d.store.Bills().Update(ctx, target); err != nil {
		d.logger.Error("Failed to update bill status", "error", err, "id", id, "status", status)
		return nil, err
	}

	d.logger.Info("Bill reviewed", "id", id, "status", next)
	if d.events != nil {
		d.events.Publish(ctx, event.BillReviewed(target))
	}
	return target, nil
}
