package service

import (
	"context"
	"math"

	"github.com/garyjia/billed/internal/application/format"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/route"
)

// DefaultModalWidth is the receipt modal width used when none is configured
const DefaultModalWidth = 800

// DateFormatter turns a raw bill date into its display form
type DateFormatter func(raw string) (string, error)

// FormattedBill is a bill prepared for display. Bill keeps the raw record;
// Date and Status hold the display values. Cause is set when the date could
// not be formatted and Date is the raw value.
type FormattedBill struct {
	Bill   entity.Bill
	Date   string
	Status string
	Cause  error
}

// Formatted reports whether the display date was produced by the formatter
func (b FormattedBill) Formatted() bool {
	return b.Cause == nil
}

// BillsDeps holds the collaborators of the Bills container
type BillsDeps struct {
	Store      port.Store
	Navigator  port.Navigator
	Modal      port.ModalPresenter
	Logger     Logger
	FormatDate DateFormatter
	ModalWidth int
}

// Bills drives the employee bills page: it fetches and formats the bills,
// opens the receipt modal and navigates to the new bill form.
type Bills struct {
	store      port.Store
	navigator  port.Navigator
	modal      port.ModalPresenter
	logger     Logger
	formatDate DateFormatter
	modalWidth int
}

// NewBills creates a Bills container
func NewBills(deps BillsDeps) *Bills {
	b := &Bills{
		store:      deps.Store,
		navigator:  deps.Navigator,
		modal:      deps.Modal,
		logger:     deps.Logger,
		formatDate: deps.FormatDate,
		modalWidth: deps.ModalWidth,
	}
	if b.logger == nil {
		b.logger = nopLogger{}
	}
	if b.formatDate == nil {
		b.formatDate = format.Date
	}
	if b.modalWidth <= 0 {
		b.modalWidth = DefaultModalWidth
	}
	return b
}

// GetBills lists the bills from the store and formats them for display.
// A store error is returned unchanged so its message can be shown as is.
// Formatting failures never fail the call: see FormatBills.
func (b *Bills) GetBills(ctx context.Context) ([]FormattedBill, error) {
	if b.store == nil {
		return nil, nil
	}

	bills, err := b.store.Bills().List(ctx)
	if err != nil {
		return nil, err
	}

	return FormatBills(bills, b.formatDate, b.logger), nil
}

// FormatBills formats every bill, in input order. When the date of a bill
// cannot be formatted the error is logged with the offending bill and the
// raw date is kept, so one bad record never drops the others.
func FormatBills(bills []entity.Bill, formatDate DateFormatter, logger Logger) []FormattedBill {
	result := make([]FormattedBill, 0, len(bills))
	for _, bill := range bills {
		result = append(result, formatBill(bill, formatDate, logger))
	}
	return result
}

func formatBill(bill entity.Bill, formatDate DateFormatter, logger Logger) FormattedBill {
	fb := FormattedBill{
		Bill:   bill,
		Status: format.Status(bill.Status),
	}

	date, err := formatDate(bill.Date)
	if err != nil {
		logger.Error("failed to format bill date", "error", err, "bill", bill)
		fb.Date = bill.Date
		fb.Cause = err
		return fb
	}

	fb.Date = date
	return fb
}

// HandleClickIconEye opens the receipt modal for the clicked row icon
func (b *Bills) HandleClickIconEye(icon port.ReceiptIcon) {
	if icon == nil || b.modal == nil {
		return
	}

	billURL := icon.Attr(port.BillURLAttr)
	b.modal.Show(port.ModalContent{
		BillURL:    billURL,
		ImageWidth: int(math.Floor(float64(b.modalWidth) * 0.5)),
	})
}

// HandleClickNewBill navigates to the new bill form
func (b *Bills) HandleClickNewBill() {
	if b.navigator == nil {
		return
	}
	b.navigator.Navigate(route.NewBill)
}
