package cmd

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/converter"
	"github.com/ginjaninja78/invoice-sync/internal/syncer"
	"github.com/pterm/pterm"
)

// printConversionStats shows what was read from the table.
func printConversionStats(result *converter.Result) {
	s := result.Stats
	tableData := pterm.TableData{
		{"Table", result.TableName},
		{"Rows read", fmt.Sprintf("%d", s.RowsRead)},
		{"Rows without invoice number", fmt.Sprintf("%d", s.RowsSkipped)},
		{"Rows with bad dates", fmt.Sprintf("%d", s.RowsRejected)},
		{"Invoices", fmt.Sprintf("%d", s.InvoicesBuilt)},
		{"Lines", fmt.Sprintf("%d", s.LinesBuilt)},
		{"Adjusted", fmt.Sprintf("%d", s.Adjusted)},
		{"Unbalanced", fmt.Sprintf("%d", s.Unbalanced)},
		{"Header conflicts", fmt.Sprintf("%d", len(result.Conflicts))},
	}

	pterm.DefaultSection.Println("Invoice table")
	if err := pterm.DefaultTable.WithData(tableData).Render(); err != nil {
		logger.Warn("Failed to render table: %v", err)
	}
}

// printInvoices lists every invoice with its reconciliation.
func printInvoices(result *converter.Result) {
	tableData := pterm.TableData{
		{"Invoice", "Vendor", "Date", "Lines", "Payable", "Adjustment", "Balanced"},
	}
	for i, h := range result.Invoices {
		rec := result.Reconciliations[i]
		balanced := "yes"
		if !rec.Balanced {
			balanced = pterm.Red("no")
		}
		tableData = append(tableData, []string{
			h.InvoiceNumber,
			h.VendorCode,
			h.InvoiceDate.Format(converter.DateLayout),
			fmt.Sprintf("%d", len(h.Details)),
			h.PayableValue.StringFixed(2),
			rec.Diff.String(),
			balanced,
		})
	}

	pterm.DefaultSection.Println("Invoices")
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		logger.Warn("Failed to render table: %v", err)
	}
}

// printSyncSummary shows the final state of every invoice and the totals.
func printSyncSummary(summary *syncer.Summary) {
	tableData := pterm.TableData{
		{"Invoice", "Vendor", "Lines", "Payable", "State", "Detail"},
	}
	for _, o := range summary.Outcomes {
		state := o.State.String()
		switch o.State {
		case syncer.Created:
			state = pterm.Green(state)
		case syncer.Failed:
			state = pterm.Red(state)
		case syncer.Pending:
			if summary.DryRun {
				state = pterm.Yellow("would create")
			}
		}

		detail := ""
		if o.Err != nil {
			detail = o.Err.Error()
		} else if o.Invoice.Unbalanced {
			detail = "unbalanced"
		}

		tableData = append(tableData, []string{
			o.Invoice.InvoiceNumber,
			o.Invoice.VendorCode,
			fmt.Sprintf("%d", len(o.Invoice.Details)),
			o.Invoice.PayableValue.StringFixed(2),
			state,
			detail,
		})
	}

	pterm.DefaultSection.Println("Sync summary")
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		logger.Warn("Failed to render table: %v", err)
	}

	pterm.Println()
	if summary.DryRun {
		pterm.Info.Printfln("Dry run: %d to create, %d already in ledger",
			summary.Count(syncer.Pending), summary.Count(syncer.Skipped))
		return
	}

	msg := fmt.Sprintf("Created %d, skipped %d, failed %d in %s",
		summary.Count(syncer.Created), summary.Count(syncer.Skipped), summary.Count(syncer.Failed),
		summary.Duration.Round(time.Millisecond))
	if summary.HasFailures() {
		pterm.Warning.Println(msg)
	} else {
		pterm.Success.Println(msg)
	}
}
