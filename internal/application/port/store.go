package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Store is the collaborator over the remote backend, exposing one
// resource accessor per record type.
type Store interface {
	Bills() BillResource
}

// BillResource exposes the list/create/update operations on bills.
// Errors returned by List carry a message meant to be shown to the user
// as-is (for example "Erreur 404").
type BillResource interface {
	List(ctx context.Context) ([]entity.Bill, error)
	Create(ctx context.Context, bill *entity.Bill) error
	Update(ctx context.Context, bill *entity.Bill) error
}
