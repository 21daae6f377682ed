package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/pkg/database"
)

func setupBillRepo(t *testing.T) (*BillRepository, *database.DB) {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "bills.db"), MaxOpenConns: 1}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fsys, err := database.MigrationsFS("")
	require.NoError(t, err)
	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(fsys))

	return NewBillRepository(db.DB, logger), db
}

func newBill(email, date string, status entity.BillStatus) *entity.Bill {
	return &entity.Bill{
		Email:    email,
		Type:     entity.ExpenseTypeTransports,
		Name:     "train " + date,
		Date:     date,
		Amount:   decimal.RequireFromString("123.45"),
		VAT:      "24",
		Pct:      20,
		FileURL:  "/receipts/x/receipt.jpg",
		FileName: "receipt.jpg",
		Status:   status,
	}
}

func TestBillRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupBillRepo(t)
	ctx := context.Background()

	bill := newBill("employee@test.tld", "2022-03-01", "")
	require.NoError(t, repo.Create(ctx, bill))
	require.NotEmpty(t, bill.ID)
	assert.Equal(t, entity.BillStatusPending, bill.Status)

	got, err := repo.GetByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.Email, got.Email)
	assert.Equal(t, "2022-03-01", got.Date)
	assert.True(t, bill.Amount.Equal(got.Amount))
	assert.Equal(t, entity.BillStatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestBillRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupBillRepo(t)
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrBillNotFound)
}

func TestBillRepository_Create_InvalidStatus(t *testing.T) {
	repo, _ := setupBillRepo(t)
	err := repo.Create(context.Background(), newBill("e@test.tld", "2022-01-01", "archived"))
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)
}

func TestBillRepository_List(t *testing.T) {
	repo, _ := setupBillRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newBill("a@test.tld", "2001-01-01", entity.BillStatusPending)))
	require.NoError(t, repo.Create(ctx, newBill("a@test.tld", "2004-04-04", entity.BillStatusAccepted)))
	require.NoError(t, repo.Create(ctx, newBill("b@test.tld", "2003-03-03", entity.BillStatusPending)))

	all, err := repo.List(ctx, port.BillFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2004-04-04", all[0].Date)
	assert.Equal(t, "2001-01-01", all[2].Date)

	mine, err := repo.List(ctx, port.BillFilter{Email: "a@test.tld"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := repo.List(ctx, port.BillFilter{Email: "a@test.tld", Status: entity.BillStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "2001-01-01", pending[0].Date)
}

func TestBillRepository_Update(t *testing.T) {
	repo, _ := setupBillRepo(t)
	ctx := context.Background()

	bill := newBill("a@test.tld", "2001-01-01", entity.BillStatusPending)
	require.NoError(t, repo.Create(ctx, bill))

	bill.Status = entity.BillStatusRefused
	bill.CommentAdmin = "ticket illisible"
	require.NoError(t, repo.Update(ctx, bill))

	got, err := repo.GetByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusRefused, got.Status)
	assert.Equal(t, "ticket illisible", got.CommentAdmin)

	missing := newBill("a@test.tld", "2001-01-01", entity.BillStatusPending)
	missing.ID = "missing"
	assert.ErrorIs(t, repo.Update(ctx, missing), entity.ErrBillNotFound)
}

func TestBillRepository_CreateInTransaction(t *testing.T) {
	repo, db := setupBillRepo(t)
	tx := sqlite.NewDB(db.DB, zap.NewNop())
	ctx := context.Background()

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, newBill("a@test.tld", "2002-02-02", entity.BillStatusPending)); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	all, err := repo.List(ctx, port.BillFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBillRepository_UpdateIfStatus(t *testing.T) {
	repo, _ := setupBillRepo(t)
	ctx := context.Background()

	bill := newBill("a@test.tld", "2001-01-01", entity.BillStatusPending)
	require.NoError(t, repo.Create(ctx, bill))

	bill.Status = entity.BillStatusAccepted
	require.NoError(t, repo.UpdateIfStatus(ctx, bill, entity.BillStatusPending))

	late := *bill
	late.Status = entity.BillStatusRefused
	err := repo.UpdateIfStatus(ctx, &late, entity.BillStatusPending)
	assert.ErrorIs(t, err, entity.ErrStaleBill)

	got, err := repo.GetByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusAccepted, got.Status)

	missing := newBill("a@test.tld", "2001-01-01", entity.BillStatusPending)
	missing.ID = "missing"
	assert.ErrorIs(t, repo.UpdateIfStatus(ctx, missing, entity.BillStatusPending), entity.ErrBillNotFound)
}
