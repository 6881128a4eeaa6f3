// =============================================================================
// Invoice Sync - Inspect Command
// =============================================================================
//
// COMMAND USAGE:
//   invoice-sync inspect [--file path]
//
// Runs the conversion pipeline and prints every invoice with its
// reconciliation, skipped rows and header conflicts. No network access.
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/invoice-sync/internal/converter"
	"github.com/ginjaninja78/invoice-sync/pkg/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the invoices a table would produce, without contacting the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "Invoice table to read (overrides source.path)")
}

func runInspect() error {
	fm := utils.NewFileManager("", "", converter.SupportedExtensions)

	source := appConfig.Source.Path
	if inspectFile != "" {
		source = inspectFile
	}
	input, err := fm.ResolveInput(source)
	if err != nil {
		return err
	}

	conv, err := converter.New(appConfig, logger)
	if err != nil {
		return err
	}

	result, err := conv.Run(input)
	if err != nil {
		return err
	}

	printConversionStats(result)
	if len(result.Invoices) > 0 {
		printInvoices(result)
	}

	if len(result.RowErrors) > 0 {
		tableData := pterm.TableData{{"Row", "Field", "Value", "Problem"}}
		for _, e := range result.RowErrors {
			tableData = append(tableData, []string{pterm.Sprint(e.Row), e.Field, e.Value, e.Err.Error()})
		}
		pterm.DefaultSection.Println("Skipped rows")
		if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
			return err
		}
	}

	if len(result.Conflicts) > 0 {
		tableData := pterm.TableData{{"Invoice", "Row", "Field", "Kept", "Ignored"}}
		for _, c := range result.Conflicts {
			tableData = append(tableData, []string{c.Key.String(), pterm.Sprint(c.Row), c.Field, c.Kept, c.Found})
		}
		pterm.DefaultSection.Println("Header conflicts")
		if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
			return err
		}
	}

	return nil
}
