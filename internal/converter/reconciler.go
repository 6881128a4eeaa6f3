package converter

import (
	"fmt"

	"github.com/ginjaninja78/invoice-sync/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the largest accepted gap between the line total and
// the payable value after reconciliation.
var DefaultTolerance = decimal.New(1, -2)

// Reconciliation is the outcome of balancing one invoice.
type Reconciliation struct {
	Key types.InvoiceKey

	// Sum is the line total before adjustment.
	Sum decimal.Decimal

	// Diff is PayableValue - Sum, the amount added to the last line.
	Diff decimal.Decimal

	// Total is the line total after adjustment.
	Total decimal.Decimal

	Balanced bool
}

// Adjusted reports whether the last line was changed.
func (r Reconciliation) Adjusted() bool {
	return !r.Diff.IsZero()
}

// Reconciler forces each invoice's line total onto its payable value.
type Reconciler struct {
	Tolerance decimal.Decimal
}

// NewReconciler creates a Reconciler with the given tolerance.
func NewReconciler(tolerance decimal.Decimal) *Reconciler {
	return &Reconciler{Tolerance: tolerance}
}

// Reconcile adds the difference between the payable value and the line
// total to the last line detail, then checks the adjusted total against the
// tolerance. An invoice outside the tolerance is flagged Unbalanced but left
// eligible for sync with its best-effort amounts.
func (r *Reconciler) Reconcile(h *types.InvoiceHeader) (Reconciliation, error) {
	result := Reconciliation{Key: h.Key()}

	if len(h.Details) == 0 {
		return result, fmt.Errorf("%s: %w", h.Key(), ErrNoDetails)
	}

	result.Sum = h.Total()
	result.Diff = h.PayableValue.Sub(result.Sum)

	if !result.Diff.IsZero() {
		last := len(h.Details) - 1
		h.Details[last].Amount = h.Details[last].Amount.Add(result.Diff)
	}

	result.Total = h.Total()
	result.Balanced = withinTolerance(result.Total, h.PayableValue, r.Tolerance)
	h.Unbalanced = !result.Balanced

	return result, nil
}

// withinTolerance reports whether |total - payable| <= tolerance.
func withinTolerance(total, payable, tolerance decimal.Decimal) bool {
	return total.Sub(payable).Abs().LessThanOrEqual(tolerance)
}
