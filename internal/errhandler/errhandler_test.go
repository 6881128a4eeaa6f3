package errhandler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/huh"
)

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"prompt aborted", huh.ErrUserAborted, true},
		{"wrapped abort", fmt.Errorf("confirm: %w", huh.ErrUserAborted), true},
		{"context cancelled", fmt.Errorf("run: %w", context.Canceled), true},
		{"interrupt text", errors.New("interrupt received"), true},
		{"timeout", context.DeadlineExceeded, false},
		{"sync failure", fmt.Errorf("%w: 2 invoices failed", ErrSyncIncomplete), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancelled(tt.err); got != tt.expected {
				t.Errorf("IsCancelled(%v): got %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
