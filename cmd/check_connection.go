package cmd

import (
	"context"

	"github.com/ginjaninja78/invoice-sync/internal/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var checkConnectionCmd = &cobra.Command{
	Use:   "check-connection",
	Short: "Query the ledger index to verify the endpoint and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.ValidateLedger(); err != nil {
			return err
		}

		timeout, err := appConfig.SessionTimeout()
		if err != nil {
			return err
		}

		client := ledger.NewClient(appConfig.Ledger, timeout, logger)

		spinner, _ := pterm.DefaultSpinner.Start("Querying " + client.Endpoint())
		index, err := client.FetchIndex(context.Background())
		if err != nil {
			spinner.Fail("Connection failed")
			return err
		}

		spinner.Success("Connected")
		pterm.Info.Printfln("The ledger holds %d invoices in register %s", index.Len(), appConfig.Ledger.Register)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkConnectionCmd)
}
