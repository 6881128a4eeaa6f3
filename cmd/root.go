// =============================================================================
// Invoice Sync - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoice-sync)
//   ├── syncCmd            (invoice-sync sync)
//   ├── inspectCmd         (invoice-sync inspect)
//   ├── checkConnectionCmd (invoice-sync check-connection)
//   ├── configCmd          (invoice-sync config init)
//   └── versionCmd         (invoice-sync version)
//
// CONFIGURATION:
//   Before any command runs, the root command:
//   1. Loads a .env file from the working directory, if present
//   2. Loads the YAML configuration with environment overrides
//   3. Sets up console logging
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/errhandler"
	"github.com/ginjaninja78/invoice-sync/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// When empty, config.yaml in the working directory is used if it exists.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the loaded configuration, set before any command runs.
var appConfig *config.Config

// logger is the console logger, set before any command runs.
var logger logging.Logger

// skipConfigAnnotation marks commands that run without a configuration.
const skipConfigAnnotation = "skip-config"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoice-sync",
	Short: "Invoice Sync - Push supplier invoices from a spreadsheet to the ledger",
	Long: `Invoice Sync reads a supplier-invoice table (Excel workbook or CSV),
groups its rows into invoices, balances every invoice against its payable
value and creates the invoices the remote ledger does not hold yet.

Key Features:
  - One invoice per (invoice number, vendor code), lines in source order
  - Rounding differences pushed onto the last line of each invoice
  - Check-then-create: re-running the same table never duplicates invoices
  - Per-invoice failure isolation with a run summary

Example Usage:
  invoice-sync sync --file ./invoices.xlsx   # Sync one workbook
  invoice-sync sync --dry-run                # Show what would be created
  invoice-sync inspect                       # Offline aggregation report
  invoice-sync check-connection              # Test ledger access`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Credentials usually live in .env; a missing file is fine.
		_ = godotenv.Load()

		if cmd.Annotations[skipConfigAnnotation] == "true" {
			logger = newLogger("info")
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		logger = newLogger(cfg.Log.Level)
		if cfg.ConfigPath != "" {
			logger.Debug("Using config file: %s", cfg.ConfigPath)
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func newLogger(level string) logging.Logger {
	if verbose {
		return logging.NewConsole(logging.LevelDebug)
	}
	return logging.NewConsole(logging.ParseLevel(level))
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errhandler.HandleError(err)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is ./config.yaml if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
