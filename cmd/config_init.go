package cmd

import (
	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage the configuration file",
	Annotations: map[string]string{skipConfigAnnotation: "true"},
}

var configInitCmd = &cobra.Command{
	Use:         "init [path]",
	Short:       "Write a starter configuration file",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}

		pterm.Success.Printfln("Wrote %s", path)
		pterm.Info.Printfln("Set the ledger credentials in .env as %s_LEDGER_USERNAME and %s_LEDGER_PASSWORD",
			config.EnvPrefix, config.EnvPrefix)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
