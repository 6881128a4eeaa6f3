package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testExtensions = []string{".xlsx", ".csv"}

func touch(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("failed to set time on %s: %v", path, err)
	}
}

func TestResolveInputFile(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "invoices.xlsx")
	pdf := filepath.Join(dir, "invoices.pdf")
	touch(t, xlsx, time.Now())
	touch(t, pdf, time.Now())

	fm := NewFileManager("", "", testExtensions)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"accepted file", xlsx, xlsx, false},
		{"wrong extension", pdf, "", true},
		{"missing file", filepath.Join(dir, "nope.xlsx"), "", true},
		{"empty path", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fm.ResolveInput(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveInputDirectoryPicksNewest(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "june.xlsx"), now.Add(-48*time.Hour))
	touch(t, filepath.Join(dir, "july.xlsx"), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, "~$july.xlsx"), now)
	touch(t, filepath.Join(dir, "notes.txt"), now)

	fm := NewFileManager("", "", testExtensions)

	got, err := fm.ResolveInput(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "july.xlsx" {
		t.Errorf("got %s, want july.xlsx", got)
	}

	empty := t.TempDir()
	if _, err := fm.ResolveInput(empty); err == nil {
		t.Error("expected error for directory without input files")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/data/invoices.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, "data", "invoices.xlsx"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	if got, _ := ExpandHome("/abs/path.xlsx"); got != "/abs/path.xlsx" {
		t.Errorf("absolute path changed: %s", got)
	}
}

func TestArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "invoices.xlsx")
	touch(t, input, time.Now())

	fm := NewFileManager(filepath.Join(dir, "archive"), "", testExtensions)
	fm.UseDateSubdirs = true

	archived, err := fm.ArchiveInputFile(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(input); !os.IsNotExist(err) {
		t.Error("input should have been moved")
	}
	if _, err := os.Stat(archived); err != nil {
		t.Errorf("archived file missing: %v", err)
	}
	name := filepath.Base(archived)
	if !strings.HasPrefix(name, "invoices_") || !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("unexpected archive name %s", name)
	}
	if !strings.Contains(archived, time.Now().Format("2006")) {
		t.Errorf("expected date subdirectory in %s", archived)
	}
}

func TestArchiveDisabled(t *testing.T) {
	fm := NewFileManager("", "", testExtensions)
	got, err := fm.ArchiveInputFile("/some/file.xlsx")
	if err != nil || got != "/some/file.xlsx" {
		t.Errorf("disabled archive should be a no-op: %q, %v", got, err)
	}
}

func TestGenerateArchiveNameIsUnique(t *testing.T) {
	now := time.Date(2025, 7, 15, 14, 30, 22, 0, time.UTC)
	a := GenerateArchiveName("/data/invoices.xlsx", now)
	b := GenerateArchiveName("/data/invoices.xlsx", now)

	if a == b {
		t.Error("names should differ")
	}
	if !strings.HasPrefix(a, "invoices_20250715_143022_") {
		t.Errorf("unexpected name %s", a)
	}
}

func TestWriteRunReport(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager("", dir, testExtensions)

	start := time.Date(2025, 7, 15, 14, 30, 0, 0, time.UTC)
	path, err := fm.WriteRunReport(RunReport{
		RunID:     "run-1",
		Source:    "invoices.xlsx",
		StartTime: start,
		EndTime:   start.Add(3 * time.Second),
		IndexNote: "2 invoices",
		Entries: []ReportEntry{
			{Invoice: "INV-100", Vendor: "V1", State: "skipped", Lines: 2, Amount: "100"},
			{Invoice: "INV-200", Vendor: "V2", State: "failed", Lines: 1, Amount: "50", Message: "status 500"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "sync_report_20250715_143000.txt" {
		t.Errorf("unexpected report name %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	content := string(data)
	for _, want := range []string{"run-1", "Duration:   3s", "failed:     1", "INV-200", "status 500"} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q:\n%s", want, content)
		}
	}

	if path, err := NewFileManager("", "", nil).WriteRunReport(RunReport{}); path != "" || err != nil {
		t.Errorf("disabled report should be a no-op: %q, %v", path, err)
	}
}
