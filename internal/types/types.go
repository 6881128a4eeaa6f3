// =============================================================================
// Invoice Sync - Shared Types
// =============================================================================
//
// This package contains the invoice model shared by the converter, the ledger
// client and the sync engine. Keeping it separate avoids import cycles:
//   - converter builds InvoiceHeader values from source rows
//   - ledger encodes them for the wire and indexes remote keys
//   - syncer moves them through the per-invoice state machine
//
// =============================================================================

package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INVOICE KEY
// =============================================================================

// InvoiceKey is the composite business key of an invoice.
// Two rows with the same key belong to the same invoice.
type InvoiceKey struct {
	InvoiceNumber string
	VendorCode    string
}

// String renders the key for diagnostics, e.g. "INV-100/V1".
func (k InvoiceKey) String() string {
	return fmt.Sprintf("%s/%s", k.InvoiceNumber, k.VendorCode)
}

// =============================================================================
// LINE DETAIL
// =============================================================================

// LineDetail is one charge line within an invoice.
// It is owned by exactly one InvoiceHeader.
type LineDetail struct {
	// SourceCode is the source-transaction code (STP).
	SourceCode string

	// AccountNumber is the ledger account the line is booked to.
	AccountNumber string

	// CostObject is the detail-level cost-object code.
	CostObject string

	// Amount is the signed line amount. The reconciler may change it on the
	// last line of an invoice, nowhere else.
	Amount decimal.Decimal

	// TaxCode is the VAT code.
	TaxCode string

	// ArticleCode is the item code.
	ArticleCode string

	// Quantity is the line quantity.
	Quantity decimal.Decimal

	// PeriodCode is the accounting period code.
	PeriodCode string

	// SourceRow is the 1-based row number in the input table.
	// Useful for error reporting.
	SourceRow int
}

// =============================================================================
// INVOICE HEADER
// =============================================================================

// InvoiceHeader is one aggregated invoice.
type InvoiceHeader struct {
	InvoiceNumber string
	VendorCode    string

	// InvoiceDate and TransactionDate carry calendar dates only.
	InvoiceDate     time.Time
	TransactionDate time.Time

	// PaymentTerms is the payment-terms code (PayDeal).
	PaymentTerms string

	// Signer is the authorizer code (OKPersons).
	Signer string

	// CostObject is the header-level cost-object code.
	CostObject string

	// PayableValue is the declared total the line amounts must add up to.
	PayableValue decimal.Decimal

	// PrelimBooking is the preliminary-booking flag as found in the source.
	PrelimBooking string

	// Details is append-only. Its order defines the wire line indices.
	Details []LineDetail

	// Unbalanced is set by the reconciler when the adjusted total still
	// differs from PayableValue by more than the tolerance.
	Unbalanced bool

	// FirstRow is the source row that created this header.
	FirstRow int
}

// Key returns the composite key of the header.
func (h *InvoiceHeader) Key() InvoiceKey {
	return InvoiceKey{InvoiceNumber: h.InvoiceNumber, VendorCode: h.VendorCode}
}

// Total returns the sum of all line amounts.
func (h *InvoiceHeader) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range h.Details {
		total = total.Add(d.Amount)
	}
	return total
}

// =============================================================================
// SOURCE ROW
// =============================================================================

// RawRow is one row as delivered by a source reader: ordered cell text and
// its 1-based position in the table.
type RawRow struct {
	Number int
	Cells  []string
}

// Table is the data region of one source table.
type Table struct {
	// Name is the sheet name for workbooks, the file name for CSV.
	Name string

	// Rows holds the non-empty rows at or below the data start row.
	Rows []RawRow
}
