package cli

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/jlintus/fsaudit/internal/fsaudit"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

func help() {
	//nolint:forbidigo // Help output to console
	fmt.Println(heredoc.Doc(`
		fsaudit scans a directory tree and reports file categories, large files,
		and files with unusual permissions.

		Usage:

			fsaudit [flags] <path>

		Positional Arguments:
		  path                   Directory to analyze (required).

		Files are classified into a fixed set of categories by extension.
		A file is large when its size strictly exceeds the threshold.
		A permission is unusual when the file is readable, writable, or
		executable by others.

		Inaccessible subdirectories and files are listed as warnings in the
		report and do not abort the scan.

		Flags:
	`))
	pflag.PrintDefaults()
}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute() error {
	var (
		options      fsaudit.Options
		thresholdStr string
	)

	allowedOutputs := []string{"table", "json"}

	pflag.StringVarP(&thresholdStr, "threshold", "t", "1MB", "Size threshold for large files (e.g., 10MB)")
	pflag.IntVarP(&options.Concurrency, "concurrency", "j", runtime.NumCPU(), "Number of concurrent analysis workers")
	pflag.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	pflag.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	pflag.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")

	pflag.CommandLine.SortFlags = false
	pflag.Usage = help
	pflag.Parse()

	if options.Version {
		//nolint:forbidigo // Version output to console
		fmt.Println(c.version)

		return nil
	}

	if !slices.Contains(allowedOutputs, options.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
	}

	if options.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	if pflag.NArg() == 0 {
		return errors.New("missing required argument: directory to analyze")
	}

	options.Path = pflag.Args()[0]

	// Parse threshold string to bytes
	size, err := humanize.ParseBytes(thresholdStr)
	if err != nil {
		return fmt.Errorf("invalid threshold: %w", err)
	}

	options.Threshold = int64(size) //nolint:gosec // Size conversion from humanize is safe

	return logic(options)
}
