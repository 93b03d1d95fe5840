// Package enumerate implements the Path Enumerator: a recursive,
// lazy walk of a repository root that yields RelativePath values,
// skipping excluded directories and silently ignoring inaccessible
// entries.
package enumerate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ethereal77/codesync/internal/pathkey"
	"github.com/ethereal77/codesync/internal/util"
)

// DefaultExclusions are the directory names skipped by default.
var DefaultExclusions = []string{"obj", "bin", ".vs", ".vscode", ".git"}

// Config controls one enumeration pass.
type Config struct {
	// Excluded directory names, matched case-insensitively against
	// any path component. Defaults to DefaultExclusions when nil.
	Excluded []string
}

func (c Config) excludedSet() map[string]bool {
	names := c.Excluded
	if names == nil {
		names = DefaultExclusions
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

// Walk enumerates every regular file under root, yielding its path
// relative to root through visit. A path is excluded if any of its
// components (matched case-insensitively) appears in the exclusion
// set. Entries that can't be accessed are skipped rather than
// aborting the walk. Order is deterministic within a single walk of a
// given filesystem, but otherwise unspecified.
func Walk(root string, cfg Config, visit func(pathkey.RelativePath)) error {
	excluded := cfg.excludedSet()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Inaccessible entry: skip it and keep walking, but don't
			// descend into a directory we couldn't stat.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == root {
			return nil
		}

		name := strings.ToLower(d.Name())
		if d.IsDir() {
			if excluded[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded[name] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		visit(pathkey.New(rel))
		return nil
	})
}

// Collect is a convenience wrapper over Walk that materializes the
// enumeration into a slice, for callers that need the full set (the
// matcher's destination index, for instance) rather than a stream.
func Collect(root string, cfg Config) ([]pathkey.RelativePath, error) {
	var out []pathkey.RelativePath
	err := Walk(root, cfg, func(p pathkey.RelativePath) {
		out = append(out, p)
	})
	return out, err
}

// CollectWithProgress is Collect with an indeterminate progress bar
// describing the walk, shown only on a TTY and suppressed in quiet
// mode. label appears as the bar's description ("Enumerating source",
// "Enumerating destination").
func CollectWithProgress(root string, cfg Config, label string) ([]pathkey.RelativePath, error) {
	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWidth(util.ProgressBarWidth()),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	var out []pathkey.RelativePath
	err := Walk(root, cfg, func(p pathkey.RelativePath) {
		out = append(out, p)
		if bar != nil {
			bar.Add(1)
		}
	})
	return out, err
}
