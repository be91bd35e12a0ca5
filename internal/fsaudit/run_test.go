package fsaudit

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file of the given size and mode under root, creating
// parent directories as needed. Mode is applied with an explicit chmod so
// the process umask cannot interfere.
func writeFile(t *testing.T, root, name string, size int, mode fs.FileMode) string {
	t.Helper()

	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'0'}, size), 0o600))
	require.NoError(t, os.Chmod(path, mode))

	return path
}

func skipIfNoUnixPermissions(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits are not meaningful on windows")
	}
}

func TestRunExampleTree(t *testing.T) {
	skipIfNoUnixPermissions(t)

	tmp := t.TempDir()
	writeFile(t, tmp, "a.txt", 500_000, 0o644)
	writeFile(t, tmp, "b.sh", 2_000_000, 0o755)

	report, err := Run(context.Background(), Options{
		Path:        tmp,
		Threshold:   1_000_000,
		Concurrency: 4,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.FileCount)
	assert.Equal(t, int64(2_500_000), report.TotalBytes)
	assert.False(t, report.Truncated)

	require.Len(t, report.Categories, 2)
	assert.Equal(t, CategoryTotal{Category: CategoryText, Count: 1, Size: 500_000}, report.Categories[0])
	assert.Equal(t, CategoryTotal{Category: CategoryScript, Count: 1, Size: 2_000_000}, report.Categories[1])

	require.Len(t, report.LargeFiles, 1)
	assert.Equal(t, int64(2_000_000), report.LargeFiles[0].Size)
	assert.Contains(t, report.LargeFiles[0].Path, "b.sh")

	// 0644 grants others read; 0755 grants others read and execute.
	require.Len(t, report.UnusualPermissions, 2)
	assert.Contains(t, report.UnusualPermissions[0].Path, "a.txt")
	assert.Equal(t, WorldReadable, report.UnusualPermissions[0].Flags)
	assert.Contains(t, report.UnusualPermissions[1].Path, "b.sh")
	assert.Equal(t, WorldReadable|WorldExecutable, report.UnusualPermissions[1].Flags)

	assert.Empty(t, report.Errors)
}

func TestRunTraversesSubdirectories(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "top.txt", 10, 0o600)
	writeFile(t, tmp, "sub/mid.txt", 20, 0o600)
	writeFile(t, tmp, "sub/deeper/leaf.txt", 30, 0o600)

	report, err := Run(context.Background(), Options{Path: tmp, Threshold: 1_000_000}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.FileCount)
	assert.Equal(t, int64(60), report.TotalBytes)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, CategoryTotal{Category: CategoryText, Count: 3, Size: 60}, report.Categories[0])
}

func TestRunThresholdBoundary(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "at.dat", 1000, 0o600)
	writeFile(t, tmp, "over.dat", 1001, 0o600)

	report, err := Run(context.Background(), Options{Path: tmp, Threshold: 1000}, nil)
	require.NoError(t, err)

	require.Len(t, report.LargeFiles, 1)
	assert.Contains(t, report.LargeFiles[0].Path, "over.dat")
}

func TestRunInaccessibleSubdirectory(t *testing.T) {
	skipIfNoUnixPermissions(t)

	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}

	tmp := t.TempDir()
	writeFile(t, tmp, "visible.txt", 100, 0o600)
	writeFile(t, tmp, "locked/hidden.txt", 100, 0o600)

	locked := filepath.Join(tmp, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report, err := Run(context.Background(), Options{Path: tmp, Threshold: 1_000_000}, nil)
	require.NoError(t, err)

	// The accessible file is fully accounted for.
	assert.Equal(t, int64(1), report.FileCount)
	assert.Equal(t, int64(100), report.TotalBytes)

	// Exactly one access error for the locked directory.
	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindAccessDenied, report.Errors[0].Kind)
	assert.Equal(t, filepath.ToSlash(locked), report.Errors[0].Path)
}

func TestRunMissingRoot(t *testing.T) {
	report, err := Run(context.Background(), Options{
		Path: filepath.Join(t.TempDir(), "does-not-exist"),
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Nil(t, report)
}

func TestRunRootNotDirectory(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, tmp, "file.txt", 1, 0o600)

	report, err := Run(context.Background(), Options{Path: path}, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, "not a directory")
	assert.Nil(t, report)
}

func TestRunCancelledReturnsPartialReport(t *testing.T) {
	tmp := t.TempDir()

	for i := 0; i < 20; i++ {
		writeFile(t, tmp, filepath.Join("sub", string(rune('a'+i))+".txt"), 10, 0o600)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, Options{Path: tmp, Threshold: 1_000_000}, nil)
	require.NoError(t, err)

	assert.True(t, report.Truncated)
}

func TestRunSymlinksNotFollowed(t *testing.T) {
	skipIfNoUnixPermissions(t)

	outside := t.TempDir()
	writeFile(t, outside, "elsewhere.txt", 100, 0o600)

	tmp := t.TempDir()
	writeFile(t, tmp, "real.txt", 10, 0o600)
	require.NoError(t, os.Symlink(outside, filepath.Join(tmp, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "real.txt"), filepath.Join(tmp, "filelink")))

	report, err := Run(context.Background(), Options{Path: tmp, Threshold: 1_000_000}, nil)
	require.NoError(t, err)

	// Only the real file is counted; links are neither followed nor counted.
	assert.Equal(t, int64(1), report.FileCount)
	assert.Equal(t, int64(10), report.TotalBytes)
	assert.Empty(t, report.Errors)
}

func TestRunEmptyDirectory(t *testing.T) {
	report, err := Run(context.Background(), Options{Path: t.TempDir()}, nil)
	require.NoError(t, err)

	assert.Zero(t, report.FileCount)
	assert.Zero(t, report.TotalBytes)
	assert.Empty(t, report.Categories)
	assert.Empty(t, report.LargeFiles)
	assert.Empty(t, report.UnusualPermissions)
	assert.Empty(t, report.Errors)
}

// stubDirEntry simulates an entry whose state changed between discovery
// and processing: Info either fails or reports an unexpected mode.
type stubDirEntry struct {
	name string
	info fs.FileInfo
	err  error
}

func (s stubDirEntry) Name() string               { return s.name }
func (s stubDirEntry) IsDir() bool                { return false }
func (s stubDirEntry) Type() fs.FileMode          { return 0 }
func (s stubDirEntry) Info() (fs.FileInfo, error) { return s.info, s.err }

type stubFileInfo struct {
	name string
	mode fs.FileMode
	size int64
}

func (s stubFileInfo) Name() string       { return s.name }
func (s stubFileInfo) Size() int64        { return s.size }
func (s stubFileInfo) Mode() fs.FileMode  { return s.mode }
func (s stubFileInfo) ModTime() time.Time { return time.Time{} }
func (s stubFileInfo) IsDir() bool        { return s.mode.IsDir() }
func (s stubFileInfo) Sys() any           { return nil }

func TestProcessVanishedFile(t *testing.T) {
	agg := newAggregator(1_000_000)

	task := fileTask{
		path:  "gone.txt",
		entry: stubDirEntry{name: "gone.txt", err: fs.ErrNotExist},
	}
	task.process(agg, zerolog.Nop())

	report := agg.snapshot(false)

	assert.Zero(t, report.FileCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindNotFound, report.Errors[0].Kind)
	assert.Equal(t, "gone.txt", report.Errors[0].Path)
}

func TestProcessUnreadableFile(t *testing.T) {
	agg := newAggregator(1_000_000)

	task := fileTask{
		path:  "secret.txt",
		entry: stubDirEntry{name: "secret.txt", err: fs.ErrPermission},
	}
	task.process(agg, zerolog.Nop())

	report := agg.snapshot(false)

	assert.Zero(t, report.FileCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindAccessDenied, report.Errors[0].Kind)
}

// A file replaced by a non-regular entry between discovery and stat must
// leave a trace in the error log, not disappear from the report.
func TestProcessReplacedByNonRegularEntry(t *testing.T) {
	agg := newAggregator(1_000_000)

	task := fileTask{
		path: "swapped.txt",
		entry: stubDirEntry{
			name: "swapped.txt",
			info: stubFileInfo{name: "swapped.txt", mode: fs.ModeSymlink},
		},
	}
	task.process(agg, zerolog.Nop())

	report := agg.snapshot(false)

	assert.Zero(t, report.FileCount)
	assert.Zero(t, report.TotalBytes)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindOther, report.Errors[0].Kind)
	assert.Equal(t, "swapped.txt", report.Errors[0].Path)
	assert.Equal(t, "no longer a regular file", report.Errors[0].Message)
}

// The same tree must produce identical results at any concurrency level.
func TestRunConcurrencyInvariance(t *testing.T) {
	skipIfNoUnixPermissions(t)

	tmp := t.TempDir()

	names := []string{"a.txt", "b.md", "c.sh", "d.png", "e.zip", "f.xyz", "g.pdf", "h.mp3"}
	for i, name := range names {
		mode := fs.FileMode(0o600)
		if i%3 == 0 {
			mode = 0o646
		}

		writeFile(t, tmp, name, (i+1)*500, mode)
		writeFile(t, tmp, filepath.Join("nested", name), (i+1)*300, mode)
	}

	writeFile(t, tmp, "big.dat", 10_000, 0o600)

	sequential, err := Run(context.Background(), Options{Path: tmp, Threshold: 2000, Concurrency: 1}, nil)
	require.NoError(t, err)

	parallel, err := Run(context.Background(), Options{Path: tmp, Threshold: 2000, Concurrency: 8}, nil)
	require.NoError(t, err)

	assert.Equal(t, sequential.FileCount, parallel.FileCount)
	assert.Equal(t, sequential.TotalBytes, parallel.TotalBytes)
	assert.Equal(t, sequential.Categories, parallel.Categories)
	assert.Equal(t, sequential.LargeFiles, parallel.LargeFiles)
	assert.Equal(t, sequential.UnusualPermissions, parallel.UnusualPermissions)
	assert.Equal(t, sequential.Errors, parallel.Errors)
}
