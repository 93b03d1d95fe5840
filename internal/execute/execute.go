// Package execute implements the Copy Executor: applying a validated
// plan to the filesystem. It resolves each Copy entry's paths against
// the plan's recorded directories, optionally gates on freshness, and
// overwrites the destination unless running in dry-run mode.
package execute

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/util"
)

// Options controls one execution pass.
type Options struct {
	// DryRun reports what would be copied without touching the
	// filesystem.
	DryRun bool
	// Freshness, when set, skips a Copy entry whose source is no newer
	// than the plan's ModifiedTime (if present) or, failing that, no
	// newer than the existing destination's mtime.
	Freshness bool
	// OnCopy, if set, is called after each Copy entry is resolved, so a
	// caller can drive a structured event log without this package
	// depending on one. Never called concurrently.
	OnCopy func(source, destination string, skipped bool, err error)
}

// Result accumulates the outcome of an execution pass. Per spec.md
// §4.8, the process exit status is nonzero iff Errors > 0.
type Result struct {
	Copied      int
	Ignored     int
	Errors      int
	BytesCopied int64
}

// Run applies every Copy entry in plan under opts, combining each
// entry's relative paths with the plan's SourceDirectory/DestDirectory.
// A per-file error is accumulated and logged; execution continues with
// the remaining entries.
func Run(opts Options, plan *planxml.Plan) *Result {
	res := &Result{}

	for _, c := range plan.FilesToCopy() {
		srcPath := filepath.Join(plan.SourceDirectory, c.Source.OSPath())
		dstPath := filepath.Join(plan.DestDirectory, c.Destination.OSPath())

		if opts.Freshness {
			stale, err := isStale(srcPath, dstPath, plan.ModifiedTime)
			if err != nil {
				util.ErrorLog("%v: %s", util.ErrIOError, err)
				res.Errors++
				if opts.OnCopy != nil {
					opts.OnCopy(c.Source.String(), c.Destination.String(), false, err)
				}
				continue
			}
			if stale {
				util.DebugLog("skipping up-to-date %s -> %s", c.Source, c.Destination)
				res.Ignored++
				if opts.OnCopy != nil {
					opts.OnCopy(c.Source.String(), c.Destination.String(), true, nil)
				}
				continue
			}
		}

		if opts.DryRun {
			util.InfoLog("DRY-RUN: would copy %s -> %s", c.Source, c.Destination)
			res.Copied++
			if opts.OnCopy != nil {
				opts.OnCopy(c.Source.String(), c.Destination.String(), false, nil)
			}
			continue
		}

		n, err := copyFile(srcPath, dstPath)
		if err != nil {
			util.ErrorLog("copy %s -> %s failed: %v", c.Source, c.Destination, err)
			res.Errors++
			if opts.OnCopy != nil {
				opts.OnCopy(c.Source.String(), c.Destination.String(), false, err)
			}
			continue
		}

		util.DebugLog("copied %s -> %s (%s)", c.Source, c.Destination, util.FormatBytes(n))
		res.Copied++
		res.BytesCopied += n
		if opts.OnCopy != nil {
			opts.OnCopy(c.Source.String(), c.Destination.String(), false, nil)
		}
	}

	util.SuccessLog("sync complete: %d copied (%s), %d ignored, %d errors",
		res.Copied, util.FormatBytes(res.BytesCopied), res.Ignored, res.Errors)
	return res
}

// isStale reports whether srcPath should be skipped: its mtime is no
// newer than planModified (when the plan records one) or, otherwise,
// no newer than dstPath's own mtime. A missing destination is never
// stale, since there is nothing yet to preserve.
func isStale(srcPath, dstPath string, planModified *time.Time) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w", srcPath, err)
	}

	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		return false, nil
	}

	threshold := dstInfo.ModTime()
	if planModified != nil {
		threshold = *planModified
	}

	return !srcInfo.ModTime().After(threshold), nil
}

// copyFile overwrites dstPath with srcPath's contents, writing through
// a sibling .part file and renaming it into place so a reader never
// observes a partially written destination. It returns the number of
// bytes written.
func copyFile(srcPath, dstPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return 0, fmt.Errorf("create destination directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	tmpPath := dstPath + ".part"
	dst, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("copy contents: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename into place: %w", err)
	}
	return n, nil
}
