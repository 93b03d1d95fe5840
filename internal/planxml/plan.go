// Package planxml reads and writes the CodeSync plan document: the
// hand-edited XML file that records matched, ambiguous, and orphaned
// files between a source and destination tree.
//
// The read side is a thin layer over encoding/xml, since the document
// shape is simple and nothing depends on exact whitespace once parsed.
// The write side is hand-rolled (see writer.go): the plan is edited by
// hand, so the section-header comments and blank-line framing around
// them are part of the observable contract, and encoding/xml's
// Encoder cannot reproduce them bit for bit.
package planxml

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/ethereal77/codesync/internal/pathkey"
	"github.com/ethereal77/codesync/internal/util"
)

// CopyEntry is a fully resolved (source, destination) pair.
type CopyEntry struct {
	Source      pathkey.RelativePath
	Destination pathkey.RelativePath
}

// PartialEntry is a Copy element missing one side. At most one of
// Source/Destination is non-nil.
type PartialEntry struct {
	Source      *pathkey.RelativePath
	Destination *pathkey.RelativePath
}

// Plan is the parsed contents of a plan document.
type Plan struct {
	SourceDirectory string
	DestDirectory   string
	ModifiedTime    *time.Time

	filesToCopy         []CopyEntry
	partialEntries      []PartialEntry
	ignoreSourceEntries []pathkey.RelativePath
	ignoreDestEntries   []pathkey.RelativePath
}

// FilesToCopy returns every Copy entry with both Source and
// Destination present.
func (p *Plan) FilesToCopy() []CopyEntry { return p.filesToCopy }

// PartialEntries returns every Copy entry missing one side.
func (p *Plan) PartialEntries() []PartialEntry { return p.partialEntries }

// IgnoreSourceEntries returns every Ignore entry recorded by source
// path.
func (p *Plan) IgnoreSourceEntries() []pathkey.RelativePath { return p.ignoreSourceEntries }

// IgnoreDestEntries returns every Ignore entry recorded by
// destination path.
func (p *Plan) IgnoreDestEntries() []pathkey.RelativePath { return p.ignoreDestEntries }

type xmlDoc struct {
	XMLName         xml.Name    `xml:"CodeSync"`
	SourceDirectory string      `xml:"SourceDirectory"`
	DestDirectory   string      `xml:"DestDirectory"`
	ModifiedTime    string      `xml:"ModifiedTime"`
	Copies          []xmlCopy   `xml:"Copy"`
	Ignores         []xmlIgnore `xml:"Ignore"`
}

type xmlCopy struct {
	Source      string `xml:"Source"`
	Destination string `xml:"Destination"`
}

type xmlIgnore struct {
	Source      string `xml:"Source"`
	Destination string `xml:"Destination"`
}

// Load reads and parses a plan document. A document missing the
// CodeSync root or either directory element is a fatal ErrInvalidPlan.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", util.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", util.ErrIOError, path, err)
	}
	defer f.Close()

	var doc xmlDoc
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", util.ErrInvalidPlan, path, err)
	}

	if doc.XMLName.Local != "CodeSync" || doc.SourceDirectory == "" || doc.DestDirectory == "" {
		return nil, fmt.Errorf("%w: %s: missing root element or directories", util.ErrInvalidPlan, path)
	}

	plan := &Plan{
		SourceDirectory: doc.SourceDirectory,
		DestDirectory:   doc.DestDirectory,
	}

	if doc.ModifiedTime != "" {
		t, err := time.Parse(time.RFC3339, doc.ModifiedTime)
		if err != nil {
			util.WarnLog("ignoring unparsable ModifiedTime %q: %v", doc.ModifiedTime, err)
		} else {
			plan.ModifiedTime = &t
		}
	}

	for _, c := range doc.Copies {
		switch {
		case c.Source != "" && c.Destination != "":
			plan.filesToCopy = append(plan.filesToCopy, CopyEntry{
				Source:      pathkey.New(c.Source),
				Destination: pathkey.New(c.Destination),
			})
		default:
			entry := PartialEntry{}
			if c.Source != "" {
				s := pathkey.New(c.Source)
				entry.Source = &s
			}
			if c.Destination != "" {
				d := pathkey.New(c.Destination)
				entry.Destination = &d
			}
			plan.partialEntries = append(plan.partialEntries, entry)
		}
	}

	for _, ig := range doc.Ignores {
		if ig.Source != "" {
			plan.ignoreSourceEntries = append(plan.ignoreSourceEntries, pathkey.New(ig.Source))
		}
		if ig.Destination != "" {
			plan.ignoreDestEntries = append(plan.ignoreDestEntries, pathkey.New(ig.Destination))
		}
	}

	return plan, nil
}
