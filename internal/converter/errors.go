package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDate marks a row whose invoice or transaction date cannot
	// be parsed. The row is skipped.
	ErrMalformedDate = errors.New("malformed date")

	// ErrMissingKey marks a row without an invoice number: titles, totals
	// and separators in the source table. The row is skipped silently.
	ErrMissingKey = errors.New("missing invoice number")

	// ErrNoDetails is returned when an invoice without lines reaches the
	// reconciler. The aggregator never produces one.
	ErrNoDetails = errors.New("invoice has no line details")

	// ErrSourceRead means the input table could not be read at all. It is
	// the only fatal error of a run.
	ErrSourceRead = errors.New("source table could not be read")
)

// RowError describes why a source row was skipped.
type RowError struct {
	// Row is the 1-based row number in the source table.
	Row int

	// Field is the field that failed, empty for whole-row conditions.
	Field string

	// Value is the offending cell text.
	Value string

	Err error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
