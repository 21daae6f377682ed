package entity

import "errors"

var (
	// ErrBillNotFound is returned when no bill matches the requested ID
	ErrBillNotFound = errors.New("bill not found")

	// ErrInvalidStatus is returned when a status outside pending/accepted/refused is used
	ErrInvalidStatus = errors.New("invalid bill status")

	// ErrStaleBill is returned when a guarded update finds the bill in another status
	ErrStaleBill = errors.New("bill status changed")
)
