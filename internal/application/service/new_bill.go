package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/domain/route"
	"github.com/garyjia/billed/pkg/utils"
)

var (
	// ErrUnsupportedReceipt is returned for receipts that are not jpg, jpeg or png
	ErrUnsupportedReceipt = errors.New("receipt must be a jpg, jpeg or png image")

	// ErrMissingReceipt is returned when a bill is submitted without a receipt
	ErrMissingReceipt = errors.New("a receipt is required")

	// ErrInvalidForm is wrapped by every new bill form validation error
	ErrInvalidForm = errors.New("invalid bill form")
)

var receiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// NewBillForm carries the raw values submitted on the new bill form
type NewBillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
}

// NewBillDeps holds the collaborators of the NewBill container
type NewBillDeps struct {
	Store     port.Store
	Navigator port.Navigator
	Receipts  port.ReceiptStorage
	Events    port.EventPublisher
	Logger    Logger
	User      entity.User
}

// NewBill drives the new bill form: receipt upload then submission.
type NewBill struct {
	store     port.Store
	navigator port.Navigator
	receipts  port.ReceiptStorage
	events    port.EventPublisher
	logger    Logger
	user      entity.User

	fileURL  string
	fileName string
}

// NewNewBill creates a NewBill container
func NewNewBill(deps NewBillDeps) *NewBill {
	n := &NewBill{
		store:     deps.Store,
		navigator: deps.Navigator,
		receipts:  deps.Receipts,
		events:    deps.Events,
		logger:    deps.Logger,
		user:      deps.User,
	}
	if n.logger == nil {
		n.logger = nopLogger{}
	}
	return n
}

// IsSupportedReceipt reports whether the file name has an accepted image extension
func IsSupportedReceipt(fileName string) bool {
	return receiptExtensions[strings.ToLower(filepath.Ext(fileName))]
}

// HandleChangeFile validates and stores the selected receipt
func (n *NewBill) HandleChangeFile(ctx context.Context, fileName string, content []byte) error {
	if !IsSupportedReceipt(fileName) {
		n.logger.Info("Rejected receipt", "file_name", fileName, "email", n.user.Email)
		return ErrUnsupportedReceipt
	}
	if n.receipts == nil {
		return fmt.Errorf("receipt storage not configured")
	}

	stored, err := n.receipts.SaveReceipt(ctx, fileName, content)
	if err != nil {
		n.logger.Error("Failed to save receipt", "error", err, "file_name", fileName)
		return fmt.Errorf("save receipt: %w", err)
	}

	n.fileURL = stored.FileURL
	n.fileName = stored.FileName
	return nil
}

// ValidateForm checks the form fields without touching the receipt or the store
func (n *NewBill) ValidateForm(form NewBillForm) error {
	_, err := n.buildBill(form)
	return err
}

// HandleSubmit creates the bill from the form and navigates back to the bills page.
// The stored receipt is deleted when no bill ends up referencing it.
func (n *NewBill) HandleSubmit(ctx context.Context, form NewBillForm) (*entity.Bill, error) {
	if n.fileURL == "" {
		return nil, ErrMissingReceipt
	}

	bill, err := n.buildBill(form)
	if err != nil {
		n.discardReceipt(ctx)
		return nil, err
	}

	if n.store == nil {
		n.discardReceipt(ctx)
		return nil, fmt.Errorf("store not configured")
	}
	if err := n.store.Bills().Create(ctx, bill); err != nil {
		n.logger.Error("Failed to create bill", "error", err, "email", bill.Email)
		n.discardReceipt(ctx)
		return nil, err
	}

	n.logger.Info("Bill created", "id", bill.ID, "email", bill.Email, "amount", bill.Amount.String())
	if n.events != nil {
		n.events.Publish(ctx, event.BillCreated(bill))
	}

	if n.navigator != nil {
		n.navigator.Navigate(route.Bills)
	}
	return bill, nil
}

func (n *NewBill) discardReceipt(ctx context.Context) {
	if n.receipts == nil || n.fileURL == "" {
		return
	}
	if err := n.receipts.DeleteReceipt(ctx, n.fileURL); err != nil {
		n.logger.Error("Failed to delete orphan receipt", "error", err, "file_url", n.fileURL)
	}
	n.fileURL = ""
	n.fileName = ""
}

func (n *NewBill) buildBill(form NewBillForm) (*entity.Bill, error) {
	if !entity.IsExpenseType(form.Type) {
		return nil, fmt.Errorf("%w: unknown expense type %q", ErrInvalidForm, form.Type)
	}
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidForm)
	}
	if err := utils.ValidateDate(form.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(form.Amount))
	if err != nil {
		return nil, fmt.Errorf("%w: amount is not a number", ErrInvalidForm)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidForm)
	}

	pct := entity.DefaultPct
	if p := strings.TrimSpace(form.Pct); p != "" {
		pct, err = strconv.Atoi(p)
		if err != nil || pct < 0 {
			return nil, fmt.Errorf("%w: pct must be a positive integer", ErrInvalidForm)
		}
	}

	return &entity.Bill{
		Email:      n.user.Email,
		Type:       form.Type,
		Name:       name,
		Date:       strings.TrimSpace(form.Date),
		Amount:     amount,
		VAT:        strings.TrimSpace(form.VAT),
		Pct:        pct,
		Commentary: strings.TrimSpace(form.Commentary),
		FileURL:    n.fileURL,
		FileName:   n.fileName,
		Status:     entity.BillStatusPending,
	}, nil
}
