// =============================================================================
// Invoice Sync - XLSX Source Reader
// =============================================================================
//
// This module reads the invoice workbook exported by the purchasing team. The
// workbook carries one line item per row on a fixed worksheet, with titles
// and column captions above the data region.
//
// SHEET LAYOUT (0-based columns, positions are fixed):
//
//   | 1 InvoiceNr | 2 VECode | 3 InvDate | 4 TransDate | 5 PayDeal | 6 Sign |
//   | 7 Objects   | 8 PrelBook | 9 PayVal | 10 STP | 11 AccNumber | 12 Objects |
//   | 13 Sum      | 14 VATCode | 15 ArtCode | 16 Quant | 17 PeriodCode |
//
//   Column 0 is not read. A change in this layout is a breaking change for
//   the converter, which addresses cells by position only.
//
// CELL VALUES:
//   Cells are read raw (unformatted): numbers keep full precision and dates
//   stored as Excel serial numbers come through as e.g. "45853". The
//   converter turns both into typed values.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// Read opens a workbook and returns the data region of one worksheet.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheetIndex: The 0-based worksheet position.
//   - dataStartRow: The 1-based row where data begins.
//
// RETURNS:
//   - The table with its sheet name and non-empty data rows.
//   - An error if the workbook or sheet cannot be read.
func Read(path string, sheetIndex, dataStartRow int) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ReadFile(f, sheetIndex, dataStartRow)
}

// ReadFile reads from an already opened workbook.
func ReadFile(f *excelize.File, sheetIndex, dataStartRow int) (*types.Table, error) {
	sheets := f.GetSheetList()
	if sheetIndex < 0 || sheetIndex >= len(sheets) {
		return nil, fmt.Errorf("workbook has %d sheet(s), sheet index %d does not exist", len(sheets), sheetIndex)
	}
	sheetName := sheets[sheetIndex]

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	table := &types.Table{Name: sheetName}

	start := dataStartRow - 1
	if start < 0 {
		start = 0
	}

	for i := start; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		table.Rows = append(table.Rows, types.RawRow{
			Number: i + 1,
			Cells:  rows[i],
		})
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
