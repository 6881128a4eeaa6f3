package cmd

import (
	"strings"
	"testing"
)

func TestVersionInfo(t *testing.T) {
	rows := map[string]string{}
	for _, row := range versionInfo() {
		if len(row) != 2 {
			t.Fatalf("row should have two columns: %v", row)
		}
		rows[row[0]] = row[1]
	}

	tests := []struct {
		label    string
		contains string
	}{
		{"Version", Version},
		{"Build Date", BuildDate},
		{"Go", "go"},
		{"Input formats", ".xlsx"},
		{"Input formats", ".csv"},
		{"Default register", "VIVc"},
	}
	for _, tt := range tests {
		if !strings.Contains(rows[tt.label], tt.contains) {
			t.Errorf("%s: got %q, want it to contain %q", tt.label, rows[tt.label], tt.contains)
		}
	}

	if rows["Commit"] == "" {
		t.Error("commit should fall back to a placeholder")
	}
}
