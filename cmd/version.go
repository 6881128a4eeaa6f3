// =============================================================================
// Invoice Sync - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   invoice-sync version
//
// Prints the build metadata together with what this build can read and where
// it sends invoices by default, e.g.
//
//   Version          1.0.0
//   Commit           3f2c1ab (modified)
//   Build Date       2025-07-15
//   Go               go1.24.11 linux/amd64
//   Input formats    .xlsx .xlsm .csv .txt
//   Default register VIVc
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/converter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/invoice-sync/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Display the version and build details",
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DefaultSection.Println("Invoice Sync")
		return pterm.DefaultTable.WithData(versionInfo()).Render()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionInfo collects the rows printed by the version command.
func versionInfo() pterm.TableData {
	return pterm.TableData{
		{"Version", Version},
		{"Commit", vcsRevision()},
		{"Build Date", BuildDate},
		{"Go", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
		{"Input formats", strings.Join(converter.SupportedExtensions, " ")},
		{"Default register", config.Default().Ledger.Register},
	}
}

// vcsRevision reads the commit stamped by the Go toolchain, shortened.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	revision, modified := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision == "" {
		return "unknown"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if modified {
		revision += " (modified)"
	}
	return revision
}
