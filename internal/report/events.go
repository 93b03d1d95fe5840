package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereal77/codesync/internal/match"
	"github.com/ethereal77/codesync/internal/util"
)

// EventType names one matcher or executor decision, scoped to the
// counters spec.md §4.4/§4.8 already define — this adds no new
// classification, only an optional structured trail of the same ones.
type EventType string

const (
	EventMatch        EventType = "match"
	EventHashMatch    EventType = "hash_match"
	EventOneLeft      EventType = "one_left"
	EventAmbiguous    EventType = "ambiguous"
	EventSourceOrphan EventType = "source_orphan"
	EventDestOrphan   EventType = "dest_orphan"
	EventCopy         EventType = "copy"
	EventSkip         EventType = "skip"
)

// Event is a single JSONL line in a run's event log.
type Event struct {
	Timestamp   time.Time `json:"ts"`
	RunID       string    `json:"run_id"`
	Event       EventType `json:"event"`
	Source      string    `json:"source,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// EventLogger writes one JSON object per line to a file, stamping
// every event with the run's correlation id. A nil *EventLogger is
// valid and every method on it is a no-op, so callers can pass it
// through unconditionally whether or not --log was set.
type EventLogger struct {
	file  *os.File
	enc   *json.Encoder
	runID string
}

// NewEventLogger opens path for an event stream. An empty path returns
// a nil logger (no-op), matching the CLI's optional --log FILE flag.
func NewEventLogger(path, runID string) (*EventLogger, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", util.ErrIOError, path, err)
	}

	return &EventLogger{file: f, enc: json.NewEncoder(f), runID: runID}, nil
}

// Close closes the underlying file. Safe to call on a nil logger.
func (l *EventLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}

func (l *EventLogger) log(evt EventType, source, destination string, err error) {
	if l == nil {
		return
	}
	e := Event{Timestamp: time.Now(), RunID: l.runID, Event: evt, Source: source, Destination: destination}
	if err != nil {
		e.Error = err.Error()
	}
	if encErr := l.enc.Encode(e); encErr != nil {
		util.WarnLog("event log write failed: %v", encErr)
	}
}

// LogMatchResult writes one event per entry in a completed Matcher
// run, in the same section order the plan emits them.
func (l *EventLogger) LogMatchResult(res *match.Result) {
	if l == nil {
		return
	}
	for _, m := range res.Matches {
		evt := EventMatch
		if m.HashMatch {
			evt = EventHashMatch
		}
		l.log(evt, m.Source.String(), m.Dest.String(), nil)
	}
	for _, ol := range res.OneLeft {
		l.log(EventOneLeft, ol.Source.String(), ol.Dest.String(), nil)
	}
	for _, amb := range res.Ambiguous {
		l.log(EventAmbiguous, amb.Source.String(), "", nil)
	}
	for _, s := range res.SourceOrphans {
		l.log(EventSourceOrphan, s.String(), "", nil)
	}
	for _, d := range res.DestOrphans {
		l.log(EventDestOrphan, "", d.String(), nil)
	}
}

// LogCopy writes an event for one executed (or skipped) Copy entry.
func (l *EventLogger) LogCopy(source, destination string, skipped bool, err error) {
	evt := EventCopy
	if skipped {
		evt = EventSkip
	}
	l.log(evt, source, destination, err)
}

// Path returns the file path backing this logger, or "" for a nil
// logger.
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.file.Name()
}
