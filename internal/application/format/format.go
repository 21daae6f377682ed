// Package format turns raw bill fields into the labels shown to employees.
package format

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/garyjia/billed/internal/domain/entity"
)

// ErrInvalidDate is returned when a raw bill date cannot be parsed
var ErrInvalidDate = errors.New("invalid date")

// French abbreviated month names as produced by the fr locale
var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date formats a raw bill date as "<day> <Mon>. <yy>", e.g. "2004-04-04" -> "4 Avr. 04"
func Date(raw string) (string, error) {
	t, err := parseDate(raw)
	if err != nil {
		return "", err
	}

	month := []rune(frenchMonths[t.Month()-1])
	month[0] = unicode.ToUpper(month[0])
	if len(month) > 3 {
		month = month[:3]
	}

	year := fmt.Sprintf("%04d", t.Year())
	return fmt.Sprintf("%d %s. %s", t.Day(), string(month), year[2:4]), nil
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// Status returns the display label of a bill status, or "" when unknown
func Status(status entity.BillStatus) string {
	switch status {
	case entity.BillStatusPending:
		return "En attente"
	case entity.BillStatusAccepted:
		return "Accepté"
	case entity.BillStatusRefused:
		return "Refused"
	}
	return ""
}
