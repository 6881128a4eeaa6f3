// =============================================================================
// Invoice Sync - Row Normalizer
// =============================================================================
//
// The normalizer turns one raw source row into typed scalars:
//   - Text fields: missing or blank cells become "".
//   - Decimal fields: missing or non-numeric cells become 0.
//   - Date fields: free-form text or Excel serial numbers. A date that cannot
//     be parsed rejects the row with ErrMalformedDate.
//   - A blank invoice number rejects the row with ErrMissingKey.
//
// =============================================================================

package converter

import (
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/types"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// amountPlaces is the precision kept from numeric cells. Workbooks store
// binary floats, so 39.995 may arrive as "39.994999999999997".
const amountPlaces = 8

// =============================================================================
// COLUMN LAYOUT
// =============================================================================

// Columns holds the 0-based position of every field in a source row.
type Columns struct {
	InvoiceNumber   int
	VendorCode      int
	InvoiceDate     int
	TransactionDate int
	PaymentTerms    int
	Signer          int
	CostObject      int
	PrelimBooking   int
	PayableValue    int

	SourceCode       int
	AccountNumber    int
	DetailCostObject int
	Amount           int
	TaxCode          int
	ArticleCode      int
	Quantity         int
	PeriodCode       int
}

// DefaultColumns returns the layout of the supplier-invoice workbook.
func DefaultColumns() Columns {
	return Columns{
		InvoiceNumber:   1,  // Column B
		VendorCode:      2,  // Column C
		InvoiceDate:     3,  // Column D
		TransactionDate: 4,  // Column E
		PaymentTerms:    5,  // Column F
		Signer:          6,  // Column G
		CostObject:      7,  // Column H
		PrelimBooking:   8,  // Column I
		PayableValue:    9,  // Column J

		SourceCode:       10, // Column K
		AccountNumber:    11, // Column L
		DetailCostObject: 12, // Column M
		Amount:           13, // Column N
		TaxCode:          14, // Column O
		ArticleCode:      15, // Column P
		Quantity:         16, // Column Q
		PeriodCode:       17, // Column R
	}
}

// =============================================================================
// NORMALIZED ROW
// =============================================================================

// Row is one normalized source row: the header-level fields of its invoice
// and the fields of one line detail.
type Row struct {
	Number int

	InvoiceNumber   string
	VendorCode      string
	InvoiceDate     time.Time
	TransactionDate time.Time
	PaymentTerms    string
	Signer          string
	CostObject      string
	PrelimBooking   string
	PayableValue    decimal.Decimal

	Detail types.LineDetail
}

// Key returns the composite key of the invoice the row belongs to.
func (r *Row) Key() types.InvoiceKey {
	return types.InvoiceKey{InvoiceNumber: r.InvoiceNumber, VendorCode: r.VendorCode}
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer converts raw rows using a fixed column layout.
type Normalizer struct {
	columns     Columns
	transformer *Transformer
}

// NewNormalizer creates a Normalizer. transformer may be nil.
func NewNormalizer(columns Columns, transformer *Transformer) *Normalizer {
	return &Normalizer{columns: columns, transformer: transformer}
}

// Normalize converts one raw row.
//
// RETURNS:
//   - The normalized row.
//   - A *RowError wrapping ErrMissingKey or ErrMalformedDate when the row
//     must be skipped.
func (n *Normalizer) Normalize(raw types.RawRow) (*Row, error) {
	c := n.columns
	text := func(field string, index int) string {
		return n.transformer.Transform(field, cellText(raw.Cells, index))
	}

	row := &Row{Number: raw.Number}

	row.InvoiceNumber = text(FieldInvoiceNumber, c.InvoiceNumber)
	if row.InvoiceNumber == "" {
		return nil, &RowError{Row: raw.Number, Err: ErrMissingKey}
	}

	invDate := cellText(raw.Cells, c.InvoiceDate)
	parsed, ok := ParseDate(invDate)
	if !ok {
		return nil, &RowError{Row: raw.Number, Field: "invoice date", Value: invDate, Err: ErrMalformedDate}
	}
	row.InvoiceDate = parsed

	transDate := cellText(raw.Cells, c.TransactionDate)
	parsed, ok = ParseDate(transDate)
	if !ok {
		return nil, &RowError{Row: raw.Number, Field: "transaction date", Value: transDate, Err: ErrMalformedDate}
	}
	row.TransactionDate = parsed

	row.VendorCode = text(FieldVendorCode, c.VendorCode)
	row.PaymentTerms = text(FieldPaymentTerms, c.PaymentTerms)
	row.Signer = text(FieldSigner, c.Signer)
	row.CostObject = text(FieldCostObject, c.CostObject)
	row.PrelimBooking = text(FieldPrelimBooking, c.PrelimBooking)
	row.PayableValue = ParseDecimal(cellText(raw.Cells, c.PayableValue))

	row.Detail = types.LineDetail{
		SourceCode:    text(FieldSourceCode, c.SourceCode),
		AccountNumber: text(FieldAccountNumber, c.AccountNumber),
		CostObject:    text(FieldDetailCostObject, c.DetailCostObject),
		Amount:        ParseDecimal(cellText(raw.Cells, c.Amount)),
		TaxCode:       text(FieldTaxCode, c.TaxCode),
		ArticleCode:   text(FieldArticleCode, c.ArticleCode),
		Quantity:      ParseDecimal(cellText(raw.Cells, c.Quantity)),
		PeriodCode:    text(FieldPeriodCode, c.PeriodCode),
		SourceRow:     raw.Number,
	}

	return row, nil
}

// =============================================================================
// SCALAR PARSING
// =============================================================================

// cellText returns the trimmed cell at index, or "" when the row is short.
func cellText(cells []string, index int) string {
	if index < 0 || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

// ParseDecimal parses a numeric cell. Blank or non-numeric text yields 0.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(amountPlaces)
}

// dateLayouts are tried in order. Month-first slashes win over day-first,
// which is only reached when the month-first reading is impossible.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"2/1/2006",
	"01-02-06",
	"02.01.2006",
	"2.1.2006",
	"20060102",
	"2 Jan 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Excel serial numbers outside this range are not dates.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465 // 9999-12-31
)

// ParseDate parses a free-form date cell and truncates it to a calendar
// date. Excel serial numbers (e.g. "45853") are accepted.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
