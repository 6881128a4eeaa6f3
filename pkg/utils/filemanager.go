// =============================================================================
// Invoice Sync - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the sync tool, including:
//   - Input resolution (home expansion, directory scan for the newest table)
//   - Input file archival after a run without failures
//   - Plain-text run reports
//
// ARCHIVAL STRATEGY:
//   The input table is moved, not copied, so the next run cannot pick it up
//   again by accident. Archived names carry a timestamp and a UUID, e.g.:
//     invoices_20250715_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xlsx
//   With UseDateSubdirs the file lands in <archive>/YYYY/MM/DD/.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the sync tool.
type FileManager struct {
	// ArchiveDir receives processed input files. Empty disables archival.
	ArchiveDir string

	// ReportDir receives run reports. Empty disables reports.
	ReportDir string

	// Extensions lists the accepted input extensions, lower case with dot.
	Extensions []string

	// UseDateSubdirs files archives under YYYY/MM/DD.
	UseDateSubdirs bool
}

// NewFileManager creates a new FileManager.
func NewFileManager(archiveDir, reportDir string, extensions []string) *FileManager {
	return &FileManager{
		ArchiveDir: archiveDir,
		ReportDir:  reportDir,
		Extensions: extensions,
	}
}

// =============================================================================
// INPUT RESOLUTION
// =============================================================================

// ResolveInput turns a configured source path into the file to read.
//
// PARAMETERS:
//   - path: A file, or a directory to scan. A leading "~" is expanded.
//
// RETURNS:
//   - The file path. For a directory, the most recently modified file with
//     an accepted extension; lock files ("~$...") are ignored.
//   - An error if nothing usable exists.
func (fm *FileManager) ResolveInput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no input file given: set source.path or pass --file")
	}

	path, err := ExpandHome(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("input not found: %w", err)
	}

	if !info.IsDir() {
		if !fm.accepts(path) {
			return "", fmt.Errorf("unsupported input file %s (accepted: %s)", path, strings.Join(fm.Extensions, ", "))
		}
		return path, nil
	}

	files, err := fm.DiscoverInputFiles(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no input files in %s (accepted: %s)", path, strings.Join(fm.Extensions, ", "))
	}
	return files[0], nil
}

// DiscoverInputFiles lists the accepted files directly inside dir, newest
// first.
func (fm *FileManager) DiscoverInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var found []candidate

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		if !fm.accepts(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].modTime.After(found[j].modTime)
	})

	files := make([]string, len(found))
	for i, c := range found {
		files[i] = c.path
	}
	return files, nil
}

func (fm *FileManager) accepts(path string) bool {
	if len(fm.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range fm.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file, or filePath unchanged when archival is
//     disabled.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath, time.Now())

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(filePath string, now time.Time) string {
	dir := fm.ArchiveDir
	if fm.UseDateSubdirs {
		dir = filepath.Join(dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}
	return filepath.Join(dir, GenerateArchiveName(filePath, now))
}

// GenerateArchiveName builds a unique name for an archived file.
//
// EXAMPLE:
//   filePath: "/data/invoices.xlsx"
//   output:   "invoices_20250715_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xlsx"
func GenerateArchiveName(filePath string, now time.Time) string {
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s_%s%s", stem, now.Format("20060102_150405"), uuid.New().String(), ext)
}

// =============================================================================
// RUN REPORT
// =============================================================================

// RunReport summarizes one sync run.
type RunReport struct {
	RunID     string
	Source    string
	StartTime time.Time
	EndTime   time.Time
	DryRun    bool

	// IndexNote explains how the ledger index was obtained.
	IndexNote string

	Entries []ReportEntry
}

// ReportEntry is one invoice in a run report.
type ReportEntry struct {
	Invoice string
	Vendor  string
	State   string
	Lines   int
	Amount  string
	Message string
}

// WriteRunReport writes a run report to ReportDir.
//
// RETURNS:
//   - The path to the report, or "" when reports are disabled.
//   - An error if writing fails.
func (fm *FileManager) WriteRunReport(report RunReport) (string, error) {
	if fm.ReportDir == "" {
		return "", nil
	}

	if err := os.MkdirAll(fm.ReportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	reportName := fmt.Sprintf("sync_report_%s.txt", report.StartTime.Format("20060102_150405"))
	reportPath := filepath.Join(fm.ReportDir, reportName)

	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	counts := make(map[string]int)
	for _, e := range report.Entries {
		counts[e.State]++
	}
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	sort.Strings(states)

	mode := "live"
	if report.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(writer, "Invoice Sync - Run Report\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:     %s\n"+
		"  Mode:       %s\n"+
		"  Source:     %s\n"+
		"  Start Time: %s\n"+
		"  End Time:   %s\n"+
		"  Duration:   %s\n"+
		"  Index:      %s\n\n"+
		"Statistics:\n"+
		"  Invoices:   %d\n",
		report.RunID,
		mode,
		report.Source,
		report.StartTime.Format("2006-01-02 15:04:05"),
		report.EndTime.Format("2006-01-02 15:04:05"),
		report.EndTime.Sub(report.StartTime).String(),
		report.IndexNote,
		len(report.Entries))
	for _, s := range states {
		fmt.Fprintf(writer, "  %-11s %d\n", s+":", counts[s])
	}

	if len(report.Entries) > 0 {
		writer.WriteString("\nInvoices:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, e := range report.Entries {
			fmt.Fprintf(writer, "  %-20s %-10s %-9s %3d lines %14s", e.Invoice, e.Vendor, e.State, e.Lines, e.Amount)
			if e.Message != "" {
				fmt.Fprintf(writer, "  %s", e.Message)
			}
			writer.WriteString("\n")
		}
	}

	writer.WriteString("\n================================================================================\n" +
		"End of Report\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}

	return reportPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
