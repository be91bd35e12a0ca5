// Package fsaudit provides concurrent file-system analysis.
//
// It walks a directory tree with a single traversal producer, dispatches
// per-file classification and permission checks across a bounded worker
// pool, and aggregates category totals, large files, and files with
// unusual "others" permissions into an immutable report.
package fsaudit
