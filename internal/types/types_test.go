package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInvoiceKeyString(t *testing.T) {
	k := InvoiceKey{InvoiceNumber: "INV-100", VendorCode: "V1"}
	if got := k.String(); got != "INV-100/V1" {
		t.Errorf("got %q, want %q", got, "INV-100/V1")
	}
}

func TestInvoiceHeaderTotal(t *testing.T) {
	h := &InvoiceHeader{
		Details: []LineDetail{
			{Amount: decimal.RequireFromString("60.00")},
			{Amount: decimal.RequireFromString("39.995")},
			{Amount: decimal.RequireFromString("-10")},
		},
	}
	want := decimal.RequireFromString("89.995")
	if got := h.Total(); !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestInvoiceHeaderTotalEmpty(t *testing.T) {
	h := &InvoiceHeader{}
	if !h.Total().IsZero() {
		t.Errorf("expected zero total, got %s", h.Total())
	}
}
