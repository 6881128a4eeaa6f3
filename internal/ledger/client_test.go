package ledger

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/logging"
	"github.com/ginjaninja78/invoice-sync/internal/types"
	"github.com/shopspring/decimal"
)

const indexBody = `<?xml version="1.0" encoding="UTF-8"?>
<data>
  <VIVc><SerNr>1001</SerNr><InvoiceNr>INV-100</InvoiceNr><VECode>V1</VECode></VIVc>
  <VIVc><SerNr>1002</SerNr><InvoiceNr> INV-300 </InvoiceNr><VECode>V3</VECode></VIVc>
  <VIVc><SerNr>1003</SerNr><InvoiceNr></InvoiceNr><VECode>V4</VECode></VIVc>
</data>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.LedgerConfig{
		BaseURL:  server.URL + "/api/1/",
		Register: "VIVc",
		Username: "user",
		Password: "secret",
	}
	return NewClient(cfg, 5*time.Second, logging.NewRecorder())
}

func sampleInvoice() *types.InvoiceHeader {
	date := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	return &types.InvoiceHeader{
		InvoiceNumber:   "INV/100",
		VendorCode:      "V 1",
		InvoiceDate:     date,
		TransactionDate: date.AddDate(0, 0, 1),
		PaymentTerms:    "30D",
		Signer:          "AV",
		CostObject:      "OBJ1",
		PrelimBooking:   "0",
		PayableValue:    decimal.RequireFromString("100"),
		Details: []types.LineDetail{
			{SourceCode: "STP1", AccountNumber: "6000", CostObject: "OBJ1", Amount: decimal.RequireFromString("60"), TaxCode: "V25", ArticleCode: "ART", Quantity: decimal.NewFromInt(1), PeriodCode: "2025-07"},
			{SourceCode: "STP1", AccountNumber: "6010", CostObject: "A B", Amount: decimal.RequireFromString("40.005"), TaxCode: "V25", ArticleCode: "ART", Quantity: decimal.NewFromInt(2), PeriodCode: "2025-07"},
		},
	}
}

func TestParseIndex(t *testing.T) {
	index, err := ParseIndex([]byte(indexBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if index.Len() != 2 {
		t.Errorf("got %d keys, want 2", index.Len())
	}
	if !index.Contains(types.InvoiceKey{InvoiceNumber: "INV-100", VendorCode: "V1"}) {
		t.Error("expected INV-100/V1")
	}
	if !index.Contains(types.InvoiceKey{InvoiceNumber: "INV-300", VendorCode: "V3"}) {
		t.Error("expected trimmed INV-300/V3")
	}
	if index.Contains(types.InvoiceKey{InvoiceNumber: "INV-100", VendorCode: "V2"}) {
		t.Error("vendor code must be part of the key")
	}
	if serial, ok := index.Serial(types.InvoiceKey{InvoiceNumber: "INV-100", VendorCode: "V1"}); !ok || serial != "1001" {
		t.Errorf("serial: got %q, %v", serial, ok)
	}
}

func TestParseIndexEmptyAndInvalid(t *testing.T) {
	for _, body := range []string{"", "  \n", "<data></data>"} {
		index, err := ParseIndex([]byte(body))
		if err != nil {
			t.Errorf("ParseIndex(%q): unexpected error: %v", body, err)
			continue
		}
		if index.Len() != 0 {
			t.Errorf("ParseIndex(%q): got %d keys, want 0", body, index.Len())
		}
	}

	if _, err := ParseIndex([]byte("<data><VIVc>")); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestFetchIndex(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/1/VIVc" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.RawQuery; got != "fields=InvoiceNr,SerNr,VECode" {
			t.Errorf("unexpected query: %s", got)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "secret" {
			t.Errorf("missing basic auth")
		}
		io.WriteString(w, indexBody)
	})

	index, err := client.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.Len() != 2 {
		t.Errorf("got %d keys, want 2", index.Len())
	}
}

func TestFetchIndexFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<data><VIVc><SerNr>")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.FetchIndex(context.Background())
			if !errors.Is(err, ErrRemoteQuery) {
				t.Errorf("expected ErrRemoteQuery, got %v", err)
			}
		})
	}
}

func TestCreateInvoice(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("missing basic auth")
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		io.WriteString(w, "<data><VIVc><SerNr>2001</SerNr></VIVc></data>")
	})

	body, err := client.CreateInvoice(context.Background(), sampleInvoice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "2001") {
		t.Errorf("response body not returned: %q", body)
	}
	if gotBody != EncodeInvoice(sampleInvoice(), false) {
		t.Errorf("unexpected payload: %s", gotBody)
	}
}

func TestCreateInvoiceRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate invoice", http.StatusConflict)
	})

	_, err := client.CreateInvoice(context.Background(), sampleInvoice())
	if !errors.Is(err, ErrRemoteCreate) {
		t.Fatalf("expected ErrRemoteCreate, got %v", err)
	}
	if !strings.Contains(err.Error(), "INV/100") || !strings.Contains(err.Error(), "409") {
		t.Errorf("error should name the invoice and status: %v", err)
	}
}

func TestCreateInvoiceCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateInvoice(ctx, sampleInvoice())
	if !errors.Is(err, ErrRemoteCreate) {
		t.Errorf("expected ErrRemoteCreate, got %v", err)
	}
}

func TestEncodeInvoice(t *testing.T) {
	payload := EncodeInvoice(sampleInvoice(), false)

	wantHeader := "set_field.InvoiceNr=INV%2F100&set_field.VECode=V+1" +
		"&set_field.InvDate=2025-07-15&set_field.TransDate=2025-07-16" +
		"&set_field.PayDeal=30D&set_field.OKPersons=AV&set_field.Objects=OBJ1" +
		"&set_field.OKFlag=0&set_field.PrelBook=0&set_field.PayVal=100"
	if !strings.HasPrefix(payload, wantHeader) {
		t.Errorf("unexpected header fields:\n got: %s\nwant prefix: %s", payload, wantHeader)
	}

	wantRows := []string{
		"&set_row_field.0.STP=STP1",
		"&set_row_field.0.Sum=60",
		"&set_row_field.1.AccNumber=6010",
		"&set_row_field.1.Objects=A B",
		"&set_row_field.1.Sum=40.005",
		"&set_row_field.1.qty=2",
		"&set_row_field.1.PeriodCode=2025-07",
	}
	for _, want := range wantRows {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
	if strings.Contains(payload, "set_row_field.2.") {
		t.Error("unexpected third line")
	}
}

func TestEncodeInvoiceRowEncoding(t *testing.T) {
	payload := EncodeInvoice(sampleInvoice(), true)

	if !strings.Contains(payload, "&set_row_field.1.Objects=A+B") {
		t.Errorf("row fields should be encoded: %s", payload)
	}

	values, err := url.ParseQuery(payload)
	if err != nil {
		t.Fatalf("encoded payload should parse: %v", err)
	}
	if got := values.Get("set_field.InvoiceNr"); got != "INV/100" {
		t.Errorf("InvoiceNr: got %q", got)
	}
	if got := values.Get("set_row_field.1.Sum"); got != "40.005" {
		t.Errorf("Sum: got %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("x", maxBodyLog+10)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "  \n", ""},
		{"trimmed", "  <SerNr>7</SerNr>\n", "<SerNr>7</SerNr>"},
		{"capped", long, long[:maxBodyLog] + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
