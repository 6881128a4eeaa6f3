// =============================================================================
// Invoice Sync - Main Entry Point
// =============================================================================
//
// USAGE:
//   invoice-sync sync              - Sync the configured invoice table
//   invoice-sync inspect           - Aggregate and reconcile without syncing
//   invoice-sync check-connection  - Query the ledger index
//   invoice-sync config init       - Write a starter configuration
//   invoice-sync version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (readers, converter, ledger client, syncer)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoice-sync/cmd"
)

func main() {
	cmd.Execute()
}
