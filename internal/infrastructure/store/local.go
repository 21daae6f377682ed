// Package store provides the port.Store backed by the local bill repository.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// Local serves the bills of one session user from the repository.
// Employees only see and touch their own bills; administrators see all.
type Local struct {
	repo port.BillRepository
	tx   port.TransactionManager
	user entity.User
}

// NewLocal creates a store scoped to user
func NewLocal(repo port.BillRepository, user entity.User) *Local {
	return &Local{repo: repo, user: user}
}

// WithTransactions runs updates inside transactions opened by tx
func (s *Local) WithTransactions(tx port.TransactionManager) *Local {
	s.tx = tx
	return s
}

// Bills returns the bill resource
func (s *Local) Bills() port.BillResource {
	return &localBills{repo: s.repo, tx: s.tx, user: s.user, lifecycle: workflow.ReviewLifecycle()}
}

type localBills struct {
	repo      port.BillRepository
	tx        port.TransactionManager
	user      entity.User
	lifecycle *workflow.Lifecycle
}

func (b *localBills) List(ctx context.Context) ([]entity.Bill, error) {
	filter := port.BillFilter{}
	if !b.user.IsAdmin() {
		filter.Email = b.user.Email
	}

	bills, err := b.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]entity.Bill, 0, len(bills))
	for _, bill := range bills {
		result = append(result, *bill)
	}
	return result, nil
}

func (b *localBills) Create(ctx context.Context, bill *entity.Bill) error {
	if !b.user.IsAdmin() {
		bill.Email = b.user.Email
	}
	return b.repo.Create(ctx, bill)
}

// Update checks ownership and writes in one transaction when one is available
func (b *localBills) Update(ctx context.Context, bill *entity.Bill) error {
	if b.tx == nil {
		return b.update(ctx, bill)
	}
	return b.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return b.update(ctx, bill)
	})
}

// update re-reads the stored bill so ownership and the review transition
// are checked against the current row, then writes only if that row's
// status is still the one checked.
func (b *localBills) update(ctx context.Context, bill *entity.Bill) error {
	existing, err := b.repo.GetByID(ctx, bill.ID)
	if err != nil {
		return err
	}
	if !b.user.IsAdmin() && existing.Email != b.user.Email {
		return fmt.Errorf("%w: %s", entity.ErrBillNotFound, bill.ID)
	}

	if existing.Status != bill.Status {
		trigger, err := workflow.TriggerFor(bill.Status)
		if err != nil {
			return err
		}
		if _, err := b.lifecycle.Fire(existing.Status, trigger); err != nil {
			return err
		}
	}

	err = b.repo.UpdateIfStatus(ctx, bill, existing.Status)
	if errors.Is(err, entity.ErrStaleBill) {
		return fmt.Errorf("%w: %v", workflow.ErrInvalidTransition, err)
	}
	return err
}

// Factory builds a Local store for each session user
type Factory struct {
	repo port.BillRepository
	tx   port.TransactionManager
}

// NewFactory creates a Factory over repo. tx may be nil.
func NewFactory(repo port.BillRepository, tx port.TransactionManager) *Factory {
	return &Factory{repo: repo, tx: tx}
}

// ForUser returns a store scoped to user
func (f *Factory) ForUser(user entity.User) port.Store {
	return NewLocal(f.repo, user).WithTransactions(f.tx)
}
