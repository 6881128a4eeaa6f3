package ledger

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/types"
)

// Index is the set of invoice keys known to the ledger at the start of a
// run. It is read-only once built.
type Index struct {
	keys map[types.InvoiceKey]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{keys: make(map[types.InvoiceKey]string)}
}

// Add records a key and the ledger serial number it was stored under.
func (x *Index) Add(key types.InvoiceKey, serial string) {
	x.keys[key] = serial
}

// Contains reports whether the ledger already holds key.
func (x *Index) Contains(key types.InvoiceKey) bool {
	if x == nil {
		return false
	}
	_, ok := x.keys[key]
	return ok
}

// Serial returns the ledger serial number stored for key.
func (x *Index) Serial(key types.InvoiceKey) (string, bool) {
	if x == nil {
		return "", false
	}
	s, ok := x.keys[key]
	return s, ok
}

// Len returns the number of keys.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.keys)
}

// indexDocument mirrors the register listing:
//
//	<data><VIVc><SerNr>1</SerNr><InvoiceNr>A</InvoiceNr><VECode>V</VECode></VIVc>...</data>
//
// Records are matched by position, not element name, so the listing of any
// register decodes the same way.
type indexDocument struct {
	Records []indexRecord `xml:",any"`
}

type indexRecord struct {
	SerNr     string `xml:"SerNr"`
	InvoiceNr string `xml:"InvoiceNr"`
	VECode    string `xml:"VECode"`
}

// ParseIndex decodes a register listing. A blank body is an empty index.
func ParseIndex(body []byte) (*Index, error) {
	index := NewIndex()
	if len(bytes.TrimSpace(body)) == 0 {
		return index, nil
	}

	var doc indexDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	for _, r := range doc.Records {
		invoice := strings.TrimSpace(r.InvoiceNr)
		if invoice == "" {
			continue
		}
		key := types.InvoiceKey{InvoiceNumber: invoice, VendorCode: strings.TrimSpace(r.VECode)}
		index.Add(key, strings.TrimSpace(r.SerNr))
	}

	return index, nil
}
