// =============================================================================
// Invoice Sync - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one source table
// into reconciled invoice headers ready for the sync engine.
//
// CONVERSION PIPELINE:
//   1. Read the source table (workbook sheet or CSV file)
//   2. Normalize every row into typed scalars, skipping rejected rows
//   3. Aggregate rows into invoice headers by (invoice number, vendor code)
//   4. Reconcile each header so its line total equals its payable value
//
// The converter never talks to the network. Everything it produces is
// deterministic for a given table and configuration.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/logging"
	"github.com/ginjaninja78/invoice-sync/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting one source table.
type Result struct {
	// TableName is the worksheet or file the rows came from.
	TableName string

	// Invoices are the reconciled headers in first-seen order.
	Invoices []*types.InvoiceHeader

	// Reconciliations holds one entry per invoice, in the same order.
	Reconciliations []Reconciliation

	// RowErrors lists rows skipped for a malformed date. Rows without an
	// invoice number are not listed.
	RowErrors []*RowError

	// Conflicts lists header fields that disagreed with the first row of
	// their invoice.
	Conflicts []Conflict

	Stats Stats
}

// Stats contains conversion statistics.
type Stats struct {
	// RowsRead is the number of non-empty rows at or below the data start row.
	RowsRead int

	// RowsSkipped counts rows without an invoice number.
	RowsSkipped int

	// RowsRejected counts rows with a malformed date.
	RowsRejected int

	InvoicesBuilt  int
	LinesBuilt     int
	Adjusted       int
	Unbalanced     int
	ProcessingTime time.Duration
}

// Unbalanced returns the invoices flagged by the reconciler.
func (r *Result) Unbalanced() []*types.InvoiceHeader {
	var out []*types.InvoiceHeader
	for _, h := range r.Invoices {
		if h.Unbalanced {
			out = append(out, h)
		}
	}
	return out
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the conversion pipeline.
type Converter struct {
	source     config.SourceConfig
	normalizer *Normalizer
	reconciler *Reconciler
	logger     logging.Logger
}

// New creates a Converter from the application configuration.
//
// PARAMETERS:
//   - cfg: The validated application configuration.
//   - logger: Receives progress and diagnostic messages.
//
// RETURNS:
//   - A new Converter.
//   - An error if a transformation rule or the tolerance is invalid.
func New(cfg *config.Config, logger logging.Logger) (*Converter, error) {
	transformer, err := NewTransformer(cfg.TransformationRules)
	if err != nil {
		return nil, fmt.Errorf("invalid transformation rules: %w", err)
	}

	tolerance, err := cfg.BalanceTolerance()
	if err != nil {
		return nil, err
	}

	return &Converter{
		source:     cfg.Source,
		normalizer: NewNormalizer(DefaultColumns(), transformer),
		reconciler: NewReconciler(tolerance),
		logger:     logger,
	}, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run reads the table at path and converts it.
//
// RETURNS:
//   - The conversion result.
//   - An error wrapping ErrSourceRead if the table cannot be read. This is
//     the only error that aborts a run.
func (c *Converter) Run(path string) (*Result, error) {
	c.logger.Info("Reading invoice table: %s", path)

	table, err := ReadSource(path, c.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}

	c.logger.Info("Using sheet %q (index %d)", table.Name, c.source.SheetIndex)
	return c.Convert(table), nil
}

// Convert runs normalization, aggregation and reconciliation over a table
// that has already been read.
func (c *Converter) Convert(table *types.Table) *Result {
	startTime := time.Now()
	result := &Result{TableName: table.Name}
	result.Stats.RowsRead = len(table.Rows)

	// =========================================================================
	// STEP 1: NORMALIZE ROWS
	// =========================================================================

	rows := make([]*Row, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row, err := c.normalizer.Normalize(raw)
		if err == nil {
			rows = append(rows, row)
			continue
		}

		var rowErr *RowError
		if !errors.As(err, &rowErr) {
			rowErr = &RowError{Row: raw.Number, Err: err}
		}

		if errors.Is(err, ErrMissingKey) {
			result.Stats.RowsSkipped++
			c.logger.Debug("Skipping row %d: no invoice number", raw.Number)
			continue
		}

		result.Stats.RowsRejected++
		result.RowErrors = append(result.RowErrors, rowErr)
		c.logger.Warn("Skipping %v", rowErr)
	}

	// =========================================================================
	// STEP 2: AGGREGATE INTO INVOICES
	// =========================================================================

	invoices, conflicts := Aggregate(rows)
	result.Conflicts = conflicts
	for _, cf := range conflicts {
		c.logger.Warn("Invoice %s row %d: %s %q differs from first row value %q, keeping first",
			cf.Key, cf.Row, cf.Field, cf.Found, cf.Kept)
	}

	// =========================================================================
	// STEP 3: RECONCILE
	// =========================================================================

	for _, h := range invoices {
		rec, err := c.reconciler.Reconcile(h)
		if err != nil {
			// Aggregate never yields an empty header.
			c.logger.Error("Cannot reconcile invoice: %v", err)
			continue
		}

		result.Invoices = append(result.Invoices, h)
		result.Reconciliations = append(result.Reconciliations, rec)
		result.Stats.LinesBuilt += len(h.Details)

		if rec.Adjusted() {
			result.Stats.Adjusted++
			c.logger.Debug("Invoice %s: adjusted last line by %s", rec.Key, rec.Diff)
		}
		if !rec.Balanced {
			result.Stats.Unbalanced++
			c.logger.Warn("Invoice %s is unbalanced: lines total %s, payable %s",
				rec.Key, rec.Total, h.PayableValue)
		}
	}

	result.Stats.InvoicesBuilt = len(result.Invoices)

	if n := len(result.Invoices); n > 0 {
		c.logger.Info("First invoice: %s", result.Invoices[0].InvoiceNumber)
		c.logger.Info("Last invoice: %s", result.Invoices[n-1].InvoiceNumber)
	} else {
		c.logger.Warn("No invoices found in %s", table.Name)
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Debug("Converted %d rows into %d invoices in %v",
		result.Stats.RowsRead, result.Stats.InvoicesBuilt, result.Stats.ProcessingTime)

	return result
}
