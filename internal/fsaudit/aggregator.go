package fsaudit

import (
	"path/filepath"
	"sort"
	"sync"
)

// aggregator accumulates results from concurrent workers behind a mutex.
// It is the only shared mutable state in a scan; workers interact with it
// exclusively through recordFile and recordError.
type aggregator struct {
	mu         sync.Mutex // Protect concurrent access
	threshold  int64
	categories map[Category]CategoryTotal
	largeFiles []LargeFile
	unusual    []PermissionFinding
	errs       []ScanError
	fileCount  int64
	totalBytes int64
}

// newAggregator creates an aggregator for the given large-file threshold.
func newAggregator(threshold int64) *aggregator {
	return &aggregator{
		threshold:  threshold,
		categories: make(map[Category]CategoryTotal),
	}
}

// recordFile records one analyzed file. The category total, large-file
// list, and unusual-permission list are all updated under a single lock
// acquisition so a snapshot never observes a partial update.
func (a *aggregator) recordFile(rec FileRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.fileCount++
	a.totalBytes += rec.Size

	total := a.categories[rec.Category]
	total.Category = rec.Category
	total.Count++
	total.Size += rec.Size
	a.categories[rec.Category] = total

	if rec.Size > a.threshold {
		a.largeFiles = append(a.largeFiles, LargeFile{Path: rec.Path, Size: rec.Size})
	}

	if rec.Permissions != 0 {
		a.unusual = append(a.unusual, PermissionFinding{Path: rec.Path, Flags: rec.Permissions})
	}
}

// recordError appends a scan error to the error log.
func (a *aggregator) recordError(scanErr ScanError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, scanErr)
}

// progress returns the current file and byte counters for live reporting.
func (a *aggregator) progress() (files, bytes int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.fileCount, a.totalBytes
}

// snapshot produces the final Report. It must only be called after all
// workers have finished. Lists are sorted so output is reproducible
// regardless of processing order: large files by size (largest first, ties
// by path), permission findings and errors by path, category totals in
// category display order.
func (a *aggregator) snapshot(truncated bool) *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	categories := make([]CategoryTotal, 0, len(a.categories))

	for c := 0; c < categoryCount; c++ {
		if total, ok := a.categories[Category(c)]; ok {
			categories = append(categories, total)
		}
	}

	largeFiles := make([]LargeFile, len(a.largeFiles))
	copy(largeFiles, a.largeFiles)

	unusual := make([]PermissionFinding, len(a.unusual))
	copy(unusual, a.unusual)

	errs := make([]ScanError, len(a.errs))
	copy(errs, a.errs)

	// Convert paths to slash format before sorting so the displayed order
	// is sorted on every platform.
	for i := range largeFiles {
		largeFiles[i].Path = filepath.ToSlash(largeFiles[i].Path)
	}

	for i := range unusual {
		unusual[i].Path = filepath.ToSlash(unusual[i].Path)
	}

	for i := range errs {
		errs[i].Path = filepath.ToSlash(errs[i].Path)
	}

	sort.Slice(largeFiles, func(i, j int) bool {
		if largeFiles[i].Size != largeFiles[j].Size {
			return largeFiles[i].Size > largeFiles[j].Size
		}

		return largeFiles[i].Path < largeFiles[j].Path
	})

	sort.Slice(unusual, func(i, j int) bool {
		return unusual[i].Path < unusual[j].Path
	})

	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Path < errs[j].Path
	})

	return &Report{
		FileCount:          a.fileCount,
		TotalBytes:         a.totalBytes,
		Categories:         categories,
		LargeFiles:         largeFiles,
		UnusualPermissions: unusual,
		Errors:             errs,
		Threshold:          a.threshold,
		Truncated:          truncated,
	}
}
