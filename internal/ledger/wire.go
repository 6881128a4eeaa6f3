package ledger

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/types"
)

// okFlagUnapproved is sent on every created invoice; approval happens in
// the ledger.
const okFlagUnapproved = "0"

const wireDateLayout = "2006-01-02"

// EncodeInvoice builds the form body that creates h in the ledger.
//
// Header fields are always URL-encoded. Line fields are sent raw, which is
// what the deployed ledger expects; encodeRows URL-encodes them as well.
// Line indices are 0-based and follow the order of h.Details.
func EncodeInvoice(h *types.InvoiceHeader, encodeRows bool) string {
	var b strings.Builder

	field := func(name, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString("set_field.")
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	field("InvoiceNr", h.InvoiceNumber)
	field("VECode", h.VendorCode)
	field("InvDate", h.InvoiceDate.Format(wireDateLayout))
	field("TransDate", h.TransactionDate.Format(wireDateLayout))
	field("PayDeal", h.PaymentTerms)
	field("OKPersons", h.Signer)
	field("Objects", h.CostObject)
	field("OKFlag", okFlagUnapproved)
	field("PrelBook", h.PrelimBooking)
	field("PayVal", h.PayableValue.String())

	for i, d := range h.Details {
		row := func(name, value string) {
			if encodeRows {
				value = url.QueryEscape(value)
			}
			fmt.Fprintf(&b, "&set_row_field.%d.%s=%s", i, name, value)
		}

		row("STP", d.SourceCode)
		row("AccNumber", d.AccountNumber)
		row("Objects", d.CostObject)
		row("Sum", d.Amount.String())
		row("VATCode", d.TaxCode)
		row("Item", d.ArticleCode)
		row("qty", d.Quantity.String())
		row("PeriodCode", d.PeriodCode)
	}

	return b.String()
}
