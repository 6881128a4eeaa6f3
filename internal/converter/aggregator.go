package converter

import (
	"github.com/ginjaninja78/invoice-sync/internal/types"
)

// Conflict records a row whose header-level field disagrees with the
// header already built for its key. The first row of a key is
// authoritative; the later value is dropped.
type Conflict struct {
	Key   types.InvoiceKey
	Row   int
	Field string
	Kept  string
	Found string
}

// Aggregate folds normalized rows into invoice headers.
//
// Rows are read in source order. The first row of each (InvoiceNumber,
// VendorCode) key creates the header from its header-level fields; every
// row, the first included, appends one LineDetail. Headers are returned in
// first-seen order and each one has at least one detail.
func Aggregate(rows []*Row) ([]*types.InvoiceHeader, []Conflict) {
	index := make(map[types.InvoiceKey]*types.InvoiceHeader)
	var order []*types.InvoiceHeader
	var conflicts []Conflict

	for _, row := range rows {
		key := row.Key()

		header, exists := index[key]
		if !exists {
			header = &types.InvoiceHeader{
				InvoiceNumber:   row.InvoiceNumber,
				VendorCode:      row.VendorCode,
				InvoiceDate:     row.InvoiceDate,
				TransactionDate: row.TransactionDate,
				PaymentTerms:    row.PaymentTerms,
				Signer:          row.Signer,
				CostObject:      row.CostObject,
				PayableValue:    row.PayableValue,
				PrelimBooking:   row.PrelimBooking,
				FirstRow:        row.Number,
			}
			index[key] = header
			order = append(order, header)
		} else {
			conflicts = append(conflicts, headerConflicts(header, row)...)
		}

		header.Details = append(header.Details, row.Detail)
	}

	return order, conflicts
}

// headerConflicts compares a later row against the header built from the
// first row of the same key.
func headerConflicts(h *types.InvoiceHeader, row *Row) []Conflict {
	var out []Conflict
	add := func(field, kept, found string) {
		if kept != found {
			out = append(out, Conflict{Key: h.Key(), Row: row.Number, Field: field, Kept: kept, Found: found})
		}
	}

	add("invoice date", h.InvoiceDate.Format(DateLayout), row.InvoiceDate.Format(DateLayout))
	add("transaction date", h.TransactionDate.Format(DateLayout), row.TransactionDate.Format(DateLayout))
	add("payment terms", h.PaymentTerms, row.PaymentTerms)
	add("signer", h.Signer, row.Signer)
	add("cost object", h.CostObject, row.CostObject)
	add("preliminary booking", h.PrelimBooking, row.PrelimBooking)
	if !h.PayableValue.Equal(row.PayableValue) {
		add("payable value", h.PayableValue.String(), row.PayableValue.String())
	}

	return out
}

// DateLayout is the calendar-date format used on the wire and in reports.
const DateLayout = "2006-01-02"
