package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillFilter narrows a bill listing. Zero values mean "no constraint".
type BillFilter struct {
	Email  string
	Status entity.BillStatus
}

// BillRepository defines persistence operations for Bill
type BillRepository interface {
	// Create inserts a bill, assigning an ID when it has none
	Create(ctx context.Context, bill *entity.Bill) error

	// GetByID retrieves a bill, returning entity.ErrBillNotFound when missing
	GetByID(ctx context.Context, id string) (*entity.Bill, error)

	// List returns the bills matching the filter
	List(ctx context.Context, filter BillFilter) ([]*entity.Bill, error)

	// Update overwrites the mutable fields of an existing bill
	Update(ctx context.Context, bill *entity.Bill) error

	// UpdateIfStatus is Update guarded on the stored status still being
	// expected. It returns entity.ErrStaleBill when the guard fails.
	UpdateIfStatus(ctx context.Context, bill *entity.Bill, expected entity.BillStatus) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
