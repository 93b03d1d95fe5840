// Package update implements the Updater: validating a prior plan
// against the current state of both trees, carrying forward whatever
// is still valid, and driving the Matcher over the residual.
package update

import (
	"os"
	"path/filepath"

	"github.com/ethereal77/codesync/internal/destindex"
	"github.com/ethereal77/codesync/internal/enumerate"
	"github.com/ethereal77/codesync/internal/match"
	"github.com/ethereal77/codesync/internal/pathkey"
	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/util"
)

// Config controls one update run.
type Config struct {
	SourceRoot string
	DestRoot   string
	EnableHash bool
	// DiscardOlder, when set, refuses to blindly carry forward a
	// previously valid match whose source file is no newer than the
	// prior plan's ModifiedTime; such entries are pushed back into the
	// residual queues instead, so the matcher re-decides them.
	DiscardOlder bool
	Excluded     []string
}

// Result is the full output of an update run: the validated carry-
// forward entries plus the matcher's resolution of whatever is left.
type Result struct {
	Prior   planxml.PriorEntries
	Matched *match.Result
}

// Run validates prior against the current filesystem state, then
// drives the Matcher over the residual source queue and destination
// index.
func Run(cfg Config, prior *planxml.Plan) (*Result, error) {
	res := &Result{}

	excludedSources := make(map[string]bool)
	excludedDests := make(map[string]bool)

	for _, s := range prior.IgnoreSourceEntries() {
		res.Prior.IgnoreSource = append(res.Prior.IgnoreSource, s)
		excludedSources[key(s)] = true
	}
	for _, d := range prior.IgnoreDestEntries() {
		res.Prior.IgnoreDest = append(res.Prior.IgnoreDest, d)
		excludedDests[key(d)] = true
	}

	for _, c := range prior.FilesToCopy() {
		sourceOK := exists(cfg.SourceRoot, c.Source)
		destOK := exists(cfg.DestRoot, c.Destination)

		switch {
		case sourceOK && destOK && !isStale(cfg, prior, c.Source):
			res.Prior.Matches = append(res.Prior.Matches, match.Match{Source: c.Source, Dest: c.Destination})
			excludedSources[key(c.Source)] = true
			excludedDests[key(c.Destination)] = true
		case sourceOK && destOK:
			// Stale under --discard-older: leave both sides in the
			// residual pools so the matcher re-evaluates the pair.
			util.InfoLog("re-evaluating stale match %s -> %s", c.Source, c.Destination)
		case sourceOK && !destOK:
			s := c.Source
			res.Prior.Partials = append(res.Prior.Partials, planxml.PartialEntry{Source: &s})
			excludedSources[key(c.Source)] = true
			util.WarnLog("destination %s no longer exists, dropped to partial", c.Destination)
		case !sourceOK && destOK:
			d := c.Destination
			res.Prior.Partials = append(res.Prior.Partials, planxml.PartialEntry{Destination: &d})
			excludedDests[key(c.Destination)] = true
			util.WarnLog("source %s no longer exists, dropped to partial", c.Source)
		default:
			util.WarnLog("both sides of %s -> %s are gone, dropping entry", c.Source, c.Destination)
		}
	}

	for _, p := range prior.PartialEntries() {
		res.Prior.Partials = append(res.Prior.Partials, p)
		if p.Source != nil {
			excludedSources[key(*p.Source)] = true
		}
		if p.Destination != nil {
			excludedDests[key(*p.Destination)] = true
		}
	}

	sources, err := enumerate.Collect(cfg.SourceRoot, enumerate.Config{Excluded: cfg.Excluded})
	if err != nil {
		return nil, err
	}
	dests, err := enumerate.Collect(cfg.DestRoot, enumerate.Config{Excluded: cfg.Excluded})
	if err != nil {
		return nil, err
	}

	var residualSources []pathkey.RelativePath
	for _, s := range sources {
		if !excludedSources[key(s)] {
			residualSources = append(residualSources, s)
		}
	}

	var residualDests []pathkey.RelativePath
	for _, d := range dests {
		if !excludedDests[key(d)] {
			residualDests = append(residualDests, d)
		}
	}

	dest := destindex.New(residualDests)
	m := match.New(match.Config{SourceRoot: cfg.SourceRoot, DestRoot: cfg.DestRoot, EnableHash: cfg.EnableHash}, dest)

	matched, err := m.Run(residualSources)
	if err != nil {
		return nil, err
	}
	res.Matched = matched

	return res, nil
}

func key(p pathkey.RelativePath) string {
	return p.Key()
}

func exists(root string, p pathkey.RelativePath) bool {
	_, err := os.Stat(filepath.Join(root, p.OSPath()))
	return err == nil
}

func isStale(cfg Config, prior *planxml.Plan, source pathkey.RelativePath) bool {
	if !cfg.DiscardOlder || prior.ModifiedTime == nil {
		return false
	}
	info, err := os.Stat(filepath.Join(cfg.SourceRoot, source.OSPath()))
	if err != nil {
		return false
	}
	return !info.ModTime().After(*prior.ModifiedTime)
}
