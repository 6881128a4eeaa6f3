package errhandler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
)

// ErrSyncIncomplete is returned by commands whose run left invoices failed.
var ErrSyncIncomplete = errors.New("sync incomplete")

// IsCancelled reports whether err comes from the user aborting a prompt or
// interrupting the run.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, huh.ErrUserAborted) ||
		errors.Is(err, context.Canceled) ||
		strings.Contains(err.Error(), "interrupt")
}

// HandleError prints a command error and exits. A cancelled operation exits
// with status 0, anything else with status 1.
func HandleError(err error) {
	if IsCancelled(err) {
		pterm.Warning.Println("Operation Cancelled")
		os.Exit(0)
	}

	if errors.Is(err, ErrSyncIncomplete) {
		pterm.Error.Println(err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
