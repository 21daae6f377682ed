package port

import "context"

// StoredReceipt describes a receipt file after it has been saved
type StoredReceipt struct {
	FileURL  string
	FileName string
}

// ReceiptStorage stores receipt images uploaded with a new bill
type ReceiptStorage interface {
	SaveReceipt(ctx context.Context, fileName string, content []byte) (*StoredReceipt, error)

	// DeleteReceipt removes a receipt previously returned by SaveReceipt
	DeleteReceipt(ctx context.Context, fileURL string) error
}
