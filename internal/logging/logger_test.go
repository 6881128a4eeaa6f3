package logging

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"chatty", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Info("created %s", "INV-1")
	r.Warn("skipped row %d", 7)

	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !r.Contains(LevelInfo, "created INV-1") {
		t.Error("expected info entry")
	}
	if !r.Contains(LevelWarn, "row 7") {
		t.Error("expected warn entry")
	}
	if r.Contains(LevelError, "row 7") {
		t.Error("unexpected error entry")
	}
}
