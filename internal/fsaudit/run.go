package fsaudit

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// taskQueueFactor sizes the task queue relative to the worker count. The
// queue bounds how far discovery can run ahead of processing.
const taskQueueFactor = 16

// fileTask is one discovered regular file awaiting analysis.
type fileTask struct {
	path  string
	entry fs.DirEntry
}

// newLogger returns a console logger when debug is enabled, otherwise a
// no-op logger.
func newLogger(debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, agg *aggregator, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				files, bytes := agg.progress()
				hook(files, bytes)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// process analyzes one file task and submits the outcome to the aggregator.
// Failures are recorded as scan errors and never propagate; a vanished or
// no-longer-regular file only affects its own record.
func (t fileTask) process(agg *aggregator, log zerolog.Logger) {
	info, err := t.entry.Info()
	if err != nil {
		log.Debug().Str("path", t.path).Err(err).Msg("stat failed")
		agg.recordError(newScanError(t.path, err))

		return
	}

	// The entry may have been replaced between discovery and stat.
	if !info.Mode().IsRegular() {
		log.Debug().Str("path", t.path).Stringer("mode", info.Mode()).Msg("no longer a regular file")
		agg.recordError(ScanError{Path: t.path, Kind: KindOther, Message: "no longer a regular file"})

		return
	}

	agg.recordFile(FileRecord{
		Path:        t.path,
		Size:        info.Size(),
		Category:    Classify(t.path),
		Permissions: EvaluatePermissions(info.Mode()),
	})
}

// Run performs directory analysis and returns the aggregated report.
// It walks the tree at opt.Path on the calling goroutine, feeding discovered
// regular files through a bounded queue to opt.Concurrency workers. Each
// worker classifies the file, evaluates its "others" permission bits, and
// records the result. Unreadable directories and files are recorded in the
// report's error log without aborting the scan; only an inaccessible root
// is fatal.
//
// The scan can be cancelled via ctx: discovery stops, in-flight tasks
// finish, and a partial report is returned with Truncated set. Progress
// updates are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	log := newLogger(opt.Debug)

	if opt.Path == "" {
		opt.Path = "."
	}

	// Normalize to native format to handle both C:/Path and C:\Path inputs
	opt.Path = filepath.Clean(opt.Path)

	// validate path exists and is accessible
	if statInfo, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", opt.Path)
	}

	if opt.Concurrency <= 0 {
		opt.Concurrency = runtime.NumCPU()
	}

	agg := newAggregator(opt.Threshold)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, agg, progressHook, opt.ProgressInterval)

	log.Debug().
		Str("path", opt.Path).
		Int64("threshold", opt.Threshold).
		Int("concurrency", opt.Concurrency).
		Msg("starting scan")

	start := time.Now()

	tasks := make(chan fileTask, opt.Concurrency*taskQueueFactor)

	var workers errgroup.Group

	for i := 0; i < opt.Concurrency; i++ {
		workers.Go(func() error {
			for task := range tasks {
				task.process(agg, log)
			}

			return nil
		})
	}

	// Single sequential walker; the calling goroutine is dedicated to
	// traversal while the workers drain the queue.
	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: 1,
	}

	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("skipping inaccessible entry")
			agg.recordError(newScanError(path, err))

			return nil
		}

		select {
		case <-ctx.Done():
			return fs.SkipAll
		default:
		}

		// Directories, symlinks, and other non-regular entries are not tasks.
		if !entry.Type().IsRegular() {
			return nil
		}

		select {
		case tasks <- fileTask{path: path, entry: entry}:
		case <-ctx.Done():
			return fs.SkipAll
		}

		return nil
	})

	close(tasks)

	// Workers never return errors; failures land in the error log.
	_ = workers.Wait()

	if walkErr != nil {
		return nil, fmt.Errorf("walking %q: %w", opt.Path, walkErr)
	}

	truncated := ctx.Err() != nil

	report := agg.snapshot(truncated)
	report.Elapsed = time.Since(start)

	log.Debug().
		Int64("files", report.FileCount).
		Int64("bytes", report.TotalBytes).
		Int("errors", len(report.Errors)).
		Bool("truncated", report.Truncated).
		Dur("elapsed", report.Elapsed).
		Msg("scan complete")

	return report, nil
}
