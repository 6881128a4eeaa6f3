// =============================================================================
// Invoice Sync - CSV Source Reader
// =============================================================================
//
// This module reads the invoice table when it is delivered as a CSV export
// instead of a workbook. The column layout is the same fixed, positional
// layout the XLSX reader documents; only the container differs.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Legacy encodings (ISO-8859-1, Windows-1252) decoded to UTF-8
//   - Variable field counts per row
//   - Rows above the data start row are skipped
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// Read parses a CSV file and returns its data region.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter, encoding and data start row.
//
// RETURNS:
//   - The table named after the file, with non-empty data rows.
//   - An error if the file cannot be opened, decoded or parsed.
func Read(filePath string, settings config.SourceConfig) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Parse(file, settings)
	if err != nil {
		return nil, err
	}
	table.Name = filepath.Base(filePath)
	return table, nil
}

// Parse reads CSV content from r.
func Parse(r io.Reader, settings config.SourceConfig) (*types.Table, error) {
	decoder, err := getDecoder(settings.Encoding)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = bufio.NewReader(r)
	if decoder != nil {
		reader = transform.NewReader(reader, decoder.NewDecoder())
	}

	csvReader := csv.NewReader(reader)
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}

	table := &types.Table{}

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		// Blank lines never reach here, so take the physical line number
		// from the reader rather than counting records.
		line, _ := csvReader.FieldPos(0)
		if line < settings.DataStartRow || isRowEmpty(record) {
			continue
		}

		table.Rows = append(table.Rows, types.RawRow{
			Number: line,
			Cells:  record,
		})
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.SourceConfig) error {
	comma, err := settings.DelimiterRune()
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Exports pad short rows inconsistently.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return nil
}

// getDecoder returns the charmap for a legacy encoding, or nil for UTF-8.
func getDecoder(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "ISO-8859-15":
		return charmap.ISO8859_15, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
