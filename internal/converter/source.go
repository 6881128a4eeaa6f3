package converter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/csvparser"
	"github.com/ginjaninja78/invoice-sync/internal/types"
	"github.com/ginjaninja78/invoice-sync/internal/xlsxparser"
)

// SupportedExtensions lists the input file types, lower case.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv", ".txt"}

// ReadSource reads the table at path, choosing the reader by extension.
func ReadSource(path string, source config.SourceConfig) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.Read(path, source.SheetIndex, source.DataStartRow)
	case ".csv", ".txt":
		return csvparser.Read(path, source)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}
