package converter

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/types"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"2025-07-15", "2025-07-15", true},
		{"2025-07-15 13:45:00", "2025-07-15", true},
		{"07/15/2025", "2025-07-15", true},
		{"03/04/2025", "2025-03-04", true},
		{"15/07/2025", "2025-07-15", true},
		{"15.07.2025", "2025-07-15", true},
		{"20250715", "2025-07-15", true},
		{"15 Jul 2025", "2025-07-15", true},
		{"45853", "2025-07-15", true},
		{"45853.5", "2025-07-15", true},
		{"", "", false},
		{"tomorrow", "", false},
		{"0", "", false},
		{"-3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok: got %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got.Format(DateLayout) != tt.expected {
				t.Errorf("ParseDate(%q): got %s, want %s", tt.input, got.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"100", "100"},
		{"-12.5", "-12.5"},
		{" 1 250.75 ", "1250.75"},
		{"39.994999999999997", "39.995"},
		{"", "0"},
		{"n/a", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDecimal(tt.input)
			if !got.Equal(dec(tt.expected)) {
				t.Errorf("ParseDecimal(%q): got %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeShortRow(t *testing.T) {
	n := NewNormalizer(DefaultColumns(), nil)

	row, err := n.Normalize(types.RawRow{Number: 9, Cells: []string{"", "INV-9", "V9", "2025-01-02", "2025-01-03"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.PaymentTerms != "" || !row.PayableValue.IsZero() || !row.Detail.Amount.IsZero() {
		t.Errorf("missing cells should default to empty or zero: %+v", row)
	}
	if row.Detail.SourceRow != 9 {
		t.Errorf("source row: got %d, want 9", row.Detail.SourceRow)
	}
}

func TestNormalizeRejects(t *testing.T) {
	n := NewNormalizer(DefaultColumns(), nil)

	tests := []struct {
		name  string
		cells []string
		want  error
		field string
	}{
		{"blank invoice", []string{"", "  ", "V1", "2025-01-02", "2025-01-02"}, ErrMissingKey, ""},
		{"bad invoice date", []string{"", "INV-1", "V1", "x", "2025-01-02"}, ErrMalformedDate, "invoice date"},
		{"bad transaction date", []string{"", "INV-1", "V1", "2025-01-02", ""}, ErrMalformedDate, "transaction date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(types.RawRow{Number: 4, Cells: tt.cells})
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) || rowErr.Field != tt.field {
				t.Errorf("unexpected row error: %#v", err)
			}
		})
	}
}

func TestReconcileGuards(t *testing.T) {
	r := NewReconciler(DefaultTolerance)

	if _, err := r.Reconcile(&types.InvoiceHeader{InvoiceNumber: "X"}); !errors.Is(err, ErrNoDetails) {
		t.Errorf("expected ErrNoDetails, got %v", err)
	}

	tests := []struct {
		total, payable string
		expected       bool
	}{
		{"100", "100", true},
		{"100.01", "100", true},
		{"99.99", "100", true},
		{"100.02", "100", false},
		{"-50.5", "-50", false},
	}
	for _, tt := range tests {
		if got := withinTolerance(dec(tt.total), dec(tt.payable), DefaultTolerance); got != tt.expected {
			t.Errorf("withinTolerance(%s, %s): got %v, want %v", tt.total, tt.payable, got, tt.expected)
		}
	}
}

func TestTransformer(t *testing.T) {
	tr, err := NewTransformer([]config.TransformationRule{
		{Field: FieldTaxCode, Actions: []config.TransformationAction{
			{Type: "trim"},
			{Type: "lookup", LookupTable: map[string]string{"25": "V25"}},
		}},
		{Field: FieldInvoiceNumber, Actions: []config.TransformationAction{
			{Type: "regex_replace", Find: `^0+`, Value: ""},
			{Type: "prepend_string", Value: "F-"},
		}},
		{Field: FieldAccountNumber, Actions: []config.TransformationAction{
			{Type: "pad_zeros_to_length", Value: "4"},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		field, input, expected string
	}{
		{FieldTaxCode, " 25 ", "V25"},
		{FieldTaxCode, "12", "12"},
		{FieldInvoiceNumber, "000123", "F-123"},
		{FieldAccountNumber, "60", "0060"},
		{FieldAccountNumber, "", ""},
		{FieldSigner, "AV", "AV"},
	}
	for _, tt := range tests {
		if got := tr.Transform(tt.field, tt.input); got != tt.expected {
			t.Errorf("Transform(%s, %q): got %q, want %q", tt.field, tt.input, got, tt.expected)
		}
	}

	var nilTransformer *Transformer
	if got := nilTransformer.Transform(FieldSigner, "x"); got != "x" {
		t.Errorf("nil transformer changed value: %q", got)
	}

	bad := [][]config.TransformationRule{
		{{Field: FieldSigner, Actions: []config.TransformationAction{{Type: "explode"}}}},
		{{Field: FieldSigner, Actions: []config.TransformationAction{{Type: "regex_replace", Find: "("}}}},
		{{Field: FieldSigner, Actions: []config.TransformationAction{{Type: "pad_zeros_to_length", Value: "x"}}}},
	}
	for i, rules := range bad {
		if _, err := NewTransformer(rules); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
