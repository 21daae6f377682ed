package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
)

const billColumns = `id, email, type, name, date, amount, vat, pct, commentary,
	comment_admin, file_url, file_name, status, created_at, updated_at`

// BillRepository implements port.BillRepository
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) *BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a bill. An ID is generated when the bill has none.
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.Status == "" {
		bill.Status = entity.BillStatusPending
	}
	if !bill.Status.Valid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidStatus, bill.Status)
	}

	query := `
		INSERT INTO bills (
			id, email, type, name, date, amount, vat, pct, commentary,
			comment_admin, file_url, file_name, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.ID,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Date,
		bill.Amount.String(),
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.CommentAdmin,
		bill.FileURL,
		bill.FileName,
		string(bill.Status),
	)
	if err != nil {
		r.logger.Error("Failed to create bill",
			zap.String("id", bill.ID),
			zap.String("email", bill.Email),
			zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}

	return nil
}

// GetByID retrieves a bill by its ID
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`

	bill, err := scanBill(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", entity.ErrBillNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get bill by ID",
			zap.String("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// List returns bills matching the filter, newest date first
func (r *BillRepository) List(ctx context.Context, filter port.BillFilter) ([]*entity.Bill, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Email != "" {
		where = append(where, "email = ?")
		args = append(args, filter.Email)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + billColumns + ` FROM bills`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills",
			zap.String("email", filter.Email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*entity.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	return bills, rows.Err()
}

// Update overwrites the mutable fields of an existing bill
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	return r.update(ctx, bill, "")
}

// UpdateIfStatus writes the bill only while its stored status is expected
func (r *BillRepository) UpdateIfStatus(ctx context.Context, bill *entity.Bill, expected entity.BillStatus) error {
	if !expected.Valid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidStatus, expected)
	}
	return r.update(ctx, bill, expected)
}

func (r *BillRepository) update(ctx context.Context, bill *entity.Bill, expected entity.BillStatus) error {
	if !bill.Status.Valid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidStatus, bill.Status)
	}

	query := `
		UPDATE bills
		SET type = ?, name = ?, date = ?, amount = ?, vat = ?, pct = ?,
			commentary = ?, comment_admin = ?, file_url = ?, file_name = ?,
			status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	args := []interface{}{
		bill.Type,
		bill.Name,
		bill.Date,
		bill.Amount.String(),
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.CommentAdmin,
		bill.FileURL,
		bill.FileName,
		string(bill.Status),
		bill.ID,
	}
	if expected != "" {
		query += " AND status = ?"
		args = append(args, string(expected))
	}

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update bill",
			zap.String("id", bill.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if expected == "" {
		return fmt.Errorf("%w: %s", entity.ErrBillNotFound, bill.ID)
	}

	current, err := r.GetByID(ctx, bill.ID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s is %s, expected %s", entity.ErrStaleBill, bill.ID, current.Status, expected)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*entity.Bill, error) {
	var (
		bill   entity.Bill
		amount string
		status string
	)
	err := row.Scan(
		&bill.ID,
		&bill.Email,
		&bill.Type,
		&bill.Name,
		&bill.Date,
		&amount,
		&bill.VAT,
		&bill.Pct,
		&bill.Commentary,
		&bill.CommentAdmin,
		&bill.FileURL,
		&bill.FileName,
		&status,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	bill.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	bill.Status = entity.BillStatus(status)

	return &bill, nil
}

// Verify interface compliance
var _ port.BillRepository = (*BillRepository)(nil)
