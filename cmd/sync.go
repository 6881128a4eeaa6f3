// =============================================================================
// Invoice Sync - Sync Command
// =============================================================================
//
// This file defines the 'sync' command, the main command of the tool.
//
// COMMAND USAGE:
//   invoice-sync sync [flags]
//
// FLAGS:
//   --file      : Invoice table to read (overrides source.path)
//   --dry-run   : Fetch the ledger index and show the plan, create nothing
//   --yes       : Do not ask for confirmation
//   --workers   : Concurrent create requests (overrides sync.workers)
//
// PROCESSING PIPELINE:
//   1. Resolve the input file
//   2. Read, normalize, aggregate and reconcile the invoices
//   3. Confirm with the user
//   4. Fetch the ledger index and create the missing invoices
//   5. Print the summary, write the run report
//   6. Archive the input file if nothing failed
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/converter"
	"github.com/ginjaninja78/invoice-sync/internal/errhandler"
	"github.com/ginjaninja78/invoice-sync/internal/ledger"
	"github.com/ginjaninja78/invoice-sync/internal/prompts"
	"github.com/ginjaninja78/invoice-sync/internal/syncer"
	"github.com/ginjaninja78/invoice-sync/pkg/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun plans the run without creating invoices.
var dryRun bool

// inputFile overrides source.path.
var inputFile string

// assumeYes skips the confirmation prompt.
var assumeYes bool

// workers overrides sync.workers when set.
var workers int

// =============================================================================
// SYNC COMMAND DEFINITION
// =============================================================================

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create the invoices of a table that the ledger does not hold yet",
	Long: `The sync command reads the invoice table, builds one invoice per
(invoice number, vendor code), balances each invoice against its payable value
and creates every invoice the ledger does not already hold.

Running sync again on the same table is safe: invoices found in the ledger
index are skipped. A failed invoice does not stop the others; fix the cause
and run again.

On a run without failures, the input file is moved to archive_dir (if set).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("workers") {
			appConfig.Sync.Workers = workers
			if err := appConfig.Validate(); err != nil {
				return err
			}
		}
		return runSync()
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&inputFile, "file", "", "Invoice table to read (overrides source.path)")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be created without creating anything")
	syncCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	syncCmd.Flags().IntVar(&workers, "workers", 1, "Number of concurrent create requests")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runSync() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: RESOLVE INPUT
	// =========================================================================

	if err := appConfig.ValidateLedger(); err != nil {
		return err
	}

	fm := utils.NewFileManager(appConfig.ArchiveDir, appConfig.ReportDir, converter.SupportedExtensions)
	fm.UseDateSubdirs = appConfig.ArchiveDateSubdirs

	source := appConfig.Source.Path
	if inputFile != "" {
		source = inputFile
	}
	input, err := fm.ResolveInput(source)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: CONVERT
	// =========================================================================

	conv, err := converter.New(appConfig, logger)
	if err != nil {
		return err
	}

	result, err := conv.Run(input)
	if err != nil {
		return err
	}
	printConversionStats(result)

	if len(result.Invoices) == 0 {
		pterm.Info.Println("Nothing to sync.")
		return nil
	}

	// =========================================================================
	// STEP 3: CONFIRM
	// =========================================================================

	timeout, err := appConfig.SessionTimeout()
	if err != nil {
		return err
	}
	client := ledger.NewClient(appConfig.Ledger, timeout, logger)

	if !dryRun && appConfig.Sync.Confirm && !assumeYes {
		if !prompts.Interactive() {
			return fmt.Errorf("confirmation required: run in a terminal or pass --yes")
		}
		ok, err := prompts.PromptConfirm(
			fmt.Sprintf("Sync %d invoices to %s?", len(result.Invoices), client.Endpoint()), false)
		if err != nil {
			return err
		}
		if !ok {
			pterm.Info.Println("Sync cancelled.")
			return nil
		}
	}

	// =========================================================================
	// STEP 4: SYNC
	// =========================================================================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := syncer.New(client, syncer.Options{
		IndexPolicy: appConfig.Sync.IndexPolicy,
		Workers:     appConfig.Sync.Workers,
		Timeout:     timeout,
		DryRun:      dryRun,
	}, logger)

	summary, err := engine.Run(ctx, result.Invoices)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 5: REPORT
	// =========================================================================

	printSyncSummary(summary)

	reportPath, err := fm.WriteRunReport(buildRunReport(input, startTime, summary))
	if err != nil {
		logger.Warn("Failed to write run report: %v", err)
	} else if reportPath != "" {
		logger.Info("Run report: %s", reportPath)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%w: %d of %d invoices failed; run again after fixing the cause",
			errhandler.ErrSyncIncomplete, summary.Count(syncer.Failed), len(summary.Outcomes))
	}

	// =========================================================================
	// STEP 6: ARCHIVE
	// =========================================================================

	if dryRun {
		return nil
	}

	archived, err := fm.ArchiveInputFile(input)
	if err != nil {
		logger.Warn("Failed to archive input file: %v", err)
	} else if archived != input {
		logger.Info("Archived input to %s", archived)
	}

	return nil
}

// buildRunReport maps a sync summary onto the file report.
func buildRunReport(source string, start time.Time, summary *syncer.Summary) utils.RunReport {
	report := utils.RunReport{
		RunID:     summary.RunID,
		Source:    source,
		StartTime: start,
		EndTime:   time.Now(),
		DryRun:    summary.DryRun,
		IndexNote: fmt.Sprintf("%d invoices in ledger", summary.IndexSize),
	}
	if summary.IndexFailed {
		report.IndexNote = "query failed, treated as empty"
	}

	for _, o := range summary.Outcomes {
		entry := utils.ReportEntry{
			Invoice: o.Invoice.InvoiceNumber,
			Vendor:  o.Invoice.VendorCode,
			State:   o.State.String(),
			Lines:   len(o.Invoice.Details),
			Amount:  o.Invoice.PayableValue.StringFixed(2),
		}
		if o.Err != nil {
			entry.Message = o.Err.Error()
		} else if o.Invoice.Unbalanced {
			entry.Message = "unbalanced"
		}
		report.Entries = append(report.Entries, entry)
	}

	return report
}
