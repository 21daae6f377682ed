package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill represents an employee expense report (note de frais)
type Bill struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Date         string          `json:"date"` // raw date as stored, usually YYYY-MM-DD
	Amount       decimal.Decimal `json:"amount"`
	VAT          string          `json:"vat"`
	Pct          int             `json:"pct"`
	Commentary   string          `json:"commentary"`
	CommentAdmin string          `json:"commentAdmin"`
	FileURL      string          `json:"fileUrl"`
	FileName     string          `json:"fileName"`
	Status       BillStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BillStatus is the review state of a bill
type BillStatus string

// Valid reports whether s is one of the known statuses
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusAccepted, BillStatusRefused:
		return true
	}
	return false
}

// BillStatuses lists statuses in dashboard order
func BillStatuses() []BillStatus {
	return []BillStatus{BillStatusPending, BillStatusAccepted, BillStatusRefused}
}

// IsExpenseType reports whether t is one of the expense types offered on the new bill form
func IsExpenseType(t string) bool {
	for _, known := range ExpenseTypes {
		if known == t {
			return true
		}
	}
	return false
}
