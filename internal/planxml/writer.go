package planxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/ethereal77/codesync/internal/pathkey"
)

// Writer produces a plan document. It accumulates the first write
// error and every subsequent call becomes a no-op, so callers can
// chain writes and check Err once at the end rather than after every
// call. The caller owns the underlying io.Writer's lifecycle (opening
// and closing the file); Writer only ever appends text to it.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps an io.Writer as a plan document writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error encountered, if any.
func (wr *Writer) Err() error {
	return wr.err
}

func (wr *Writer) raw(s string) {
	if wr.err != nil {
		return
	}
	_, wr.err = io.WriteString(wr.w, s)
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WriteHeader writes the XML declaration, the CodeSync root open tag,
// and the two mandatory directory elements plus the optional
// ModifiedTime, two-space indented.
func (wr *Writer) WriteHeader(sourceDir, destDir string, modifiedTime *time.Time) {
	wr.raw(xml.Header)
	wr.raw("<CodeSync>\n")
	wr.raw(fmt.Sprintf("  <SourceDirectory>%s</SourceDirectory>\n", escape(sourceDir)))
	wr.raw(fmt.Sprintf("  <DestDirectory>%s</DestDirectory>\n", escape(destDir)))
	if modifiedTime != nil {
		wr.raw(fmt.Sprintf("  <ModifiedTime>%s</ModifiedTime>\n", modifiedTime.Format(time.RFC3339)))
	}
}

// WriteSectionHeader writes a descriptive comment block, framed by a
// blank line before and after, the way a hand-edited document expects
// each section to be introduced. The blank lines are raw text, not
// structured XML, so the document is briefly not the product of a
// single well-formed write — this is intentional and the flush
// sequence below must be preserved verbatim.
func (wr *Writer) WriteSectionHeader(text string) {
	wr.raw("\n  <!-- " + text + " -->\n\n")
}

// WriteCopy writes a resolved match as a Copy element. An optional
// comment (used for the one-left "potentially incorrect" warning)
// precedes the element.
func (wr *Writer) WriteCopy(source, dest pathkey.RelativePath, comment string) {
	if comment != "" {
		wr.raw("  <!-- " + comment + " -->\n")
	}
	wr.raw("  <Copy>\n")
	wr.raw(fmt.Sprintf("    <Source>%s</Source>\n", escape(source.String())))
	wr.raw(fmt.Sprintf("    <Destination>%s</Destination>\n", escape(dest.String())))
	wr.raw("  </Copy>\n")
}

// WritePartial writes a Copy element with one side absent, for the
// partial entries the updater carries forward from a prior plan.
func (wr *Writer) WritePartial(source, dest *pathkey.RelativePath) {
	wr.raw("  <Copy>\n")
	if source != nil {
		wr.raw(fmt.Sprintf("    <Source>%s</Source>\n", escape(source.String())))
	}
	if dest != nil {
		wr.raw(fmt.Sprintf("    <Destination>%s</Destination>\n", escape(dest.String())))
	}
	wr.raw("  </Copy>\n")
}

// WriteIgnoreSource writes a source-ignore entry: a source file with
// no destination candidate, or one the user has chosen to skip.
func (wr *Writer) WriteIgnoreSource(source pathkey.RelativePath) {
	wr.raw("  <Ignore>\n")
	wr.raw(fmt.Sprintf("    <Source>%s</Source>\n", escape(source.String())))
	wr.raw("  </Ignore>\n")
}

// WriteIgnoreAmbiguous writes an ambiguous source as an Ignore entry,
// with every remaining candidate listed as a commented-out Destination
// hint. Uncommenting one and turning the element into a Copy is how a
// human resolves the ambiguity by hand; the hint lines are never read
// back.
func (wr *Writer) WriteIgnoreAmbiguous(source pathkey.RelativePath, candidates []pathkey.RelativePath) {
	wr.raw("  <Ignore>\n")
	wr.raw(fmt.Sprintf("    <Source>%s</Source>\n", escape(source.String())))
	for _, c := range candidates {
		wr.raw(fmt.Sprintf("    <!-- <Destination>%s</Destination> -->\n", escape(c.String())))
	}
	wr.raw("  </Ignore>\n")
}

// WriteIgnoreDest writes a dest-ignore entry: a destination file the
// plan records as intentionally unmatched.
func (wr *Writer) WriteIgnoreDest(dest pathkey.RelativePath) {
	wr.raw("  <Ignore>\n")
	wr.raw(fmt.Sprintf("    <Destination>%s</Destination>\n", escape(dest.String())))
	wr.raw("  </Ignore>\n")
}

// WriteDestOrphanComment writes a destination orphan as an
// informational comment only; it is never a real Ignore element and
// is never read back, since nothing is being decided about it yet.
func (wr *Writer) WriteDestOrphanComment(dest pathkey.RelativePath) {
	wr.raw(fmt.Sprintf("  <!-- <Destination>%s</Destination> -->\n", escape(dest.String())))
}

// Finish writes the closing root tag. It does not close the
// underlying writer; the caller remains responsible for that on every
// exit path, including ones that abort early on error.
func (wr *Writer) Finish() error {
	wr.raw("</CodeSync>\n")
	return wr.err
}
