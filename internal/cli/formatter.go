package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/jlintus/fsaudit/internal/fsaudit"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *fsaudit.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the report in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(report *fsaudit.Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	// Category totals
	fmt.Fprintln(w, "\nFile categories:\t\t")

	if len(report.Categories) == 0 {
		fmt.Fprintln(w, "  (none)\t\t")
	}

	for _, total := range report.Categories {
		pct := 0.0
		if report.TotalBytes > 0 {
			pct = 100.0 * float64(total.Size) / float64(report.TotalBytes)
		}

		fmt.Fprintf(w, "  %s:\t%d files, %s (%.1f%%)\n",
			total.Category, total.Count, humanize.IBytes(uint64(total.Size)), pct) //nolint:gosec // Size is always positive
	}

	// Large files
	fmt.Fprintf(w, "\nLarge files (> %s):\t\t\n",
		humanize.Bytes(uint64(report.Threshold))) //nolint:gosec // Threshold is always positive

	if len(report.LargeFiles) == 0 {
		fmt.Fprintln(w, "  (none)\t\t")
	}

	for _, file := range report.LargeFiles {
		fmt.Fprintf(w, "  '%s'\t%s (%d bytes)\n",
			file.Path, humanize.IBytes(uint64(file.Size)), file.Size) //nolint:gosec // Size is always positive
	}

	// Unusual permissions
	fmt.Fprintln(w, "\nUnusual permissions:\t\t")

	if len(report.UnusualPermissions) == 0 {
		fmt.Fprintln(w, "  (none)\t\t")
	}

	for _, finding := range report.UnusualPermissions {
		fmt.Fprintf(w, "  '%s'\t%s\n", finding.Path, finding.Flags)
	}

	// Skipped paths, if any
	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nWarnings:\t\t")

		for _, scanErr := range report.Errors {
			fmt.Fprintf(w, "  '%s'\t%s: %s\n", scanErr.Path, scanErr.Kind, scanErr.Message)
		}
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", report.FileCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(report.TotalBytes)), report.TotalBytes) //nolint:gosec // Bytes is always positive

	fmt.Fprintf(w, "\nElapsed:\t%v\n", report.Elapsed)

	if report.Truncated {
		fmt.Fprintln(w, "\nScan was interrupted; results are partial.")
	}

	return w.Flush()
}
