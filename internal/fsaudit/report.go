package fsaudit

import (
	"errors"
	"io/fs"
	"time"
)

// Options configures a single scan.
type Options struct {
	// Path is the root directory to analyze.
	Path string
	// Threshold is the large-file size threshold in bytes.
	Threshold int64
	// Concurrency is the number of analysis workers (0 = available CPUs).
	Concurrency int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (table or json).
	Output string
	// Version indicates whether to show version and exit.
	Version bool
}

// FileRecord describes one successfully analyzed regular file.
type FileRecord struct {
	// Path is the file path as discovered during traversal.
	Path string `json:"path"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// Category is the classification derived from the file extension.
	Category Category `json:"category"`
	// Permissions holds the unusual "others" permission flags, if any.
	Permissions PermissionFlags `json:"permissions"`
}

// ErrorKind distinguishes the cause of a ScanError.
type ErrorKind int

// Scan error kinds.
const (
	KindAccessDenied ErrorKind = iota
	KindNotFound
	KindOther
)

// String returns the display label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAccessDenied:
		return "access denied"
	case KindNotFound:
		return "not found"
	default:
		return "error"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ScanError records a path that could not be read or stat'd. Scan errors
// never abort the scan; they accumulate in the report's error log.
type ScanError struct {
	// Path is the file or directory that failed.
	Path string `json:"path"`
	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`
	// Message is the underlying error text.
	Message string `json:"message"`
}

// newScanError builds a ScanError from an underlying filesystem error.
func newScanError(path string, err error) ScanError {
	kind := KindOther

	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = KindAccessDenied
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	}

	return ScanError{Path: path, Kind: kind, Message: err.Error()}
}

// CategoryTotal holds the accumulated statistics for one category.
type CategoryTotal struct {
	// Category is the classification label.
	Category Category `json:"category"`
	// Count is the number of files in this category.
	Count int64 `json:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
}

// LargeFile is a file whose size strictly exceeds the configured threshold.
type LargeFile struct {
	// Path is the file path.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// PermissionFinding is a file with a non-empty unusual-permission flag set.
type PermissionFinding struct {
	// Path is the file path.
	Path string `json:"path"`
	// Flags holds the unusual permission flags.
	Flags PermissionFlags `json:"flags"`
}

// Report is the immutable result of a scan.
type Report struct {
	// FileCount is the total number of files analyzed.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all analyzed files.
	TotalBytes int64 `json:"total_bytes"`
	// Categories holds per-category totals in category display order.
	Categories []CategoryTotal `json:"categories"`
	// LargeFiles lists files exceeding the threshold, largest first.
	LargeFiles []LargeFile `json:"large_files"`
	// UnusualPermissions lists permission findings sorted by path.
	UnusualPermissions []PermissionFinding `json:"unusual_permissions"`
	// Errors lists paths skipped during the scan, sorted by path.
	Errors []ScanError `json:"errors,omitempty"`
	// Threshold is the large-file threshold the scan ran with.
	Threshold int64 `json:"threshold"`
	// Truncated indicates the scan was cancelled before completing.
	Truncated bool `json:"truncated"`
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration `json:"elapsed"`
}
