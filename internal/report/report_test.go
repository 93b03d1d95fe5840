package report

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereal77/codesync/internal/match"
	"github.com/ethereal77/codesync/internal/pathkey"
)

func TestNewMatchSummaryMapsCounters(t *testing.T) {
	res := &match.Result{
		Counters: match.Counters{
			Matched:           3,
			MatchedByHash:     1,
			SourceOneLeft:     1,
			SourceMultiInDest: 2,
			SourceNotInDest:   4,
			DestNotInSource:   5,
		},
	}

	s := NewMatchSummary("run-1", "", res)
	if s.Matched != 3 || s.MatchedByHash != 1 || s.OneLeft != 1 || s.Ambiguous != 2 || s.SourceOrphans != 4 || s.DestOrphans != 5 {
		t.Errorf("summary = %+v", s)
	}
}

func TestNewMatchSummaryTotalsBytesWouldMove(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("1234567"), 0644); err != nil {
		t.Fatal(err)
	}

	res := &match.Result{
		Matches: []match.Match{
			{Source: pathkey.New("a.txt"), Dest: pathkey.New("a-copy.txt")},
			{Source: pathkey.New("sub/b.txt"), Dest: pathkey.New("sub/b-copy.txt")},
			{Source: pathkey.New("missing.txt"), Dest: pathkey.New("missing-copy.txt")},
		},
	}

	s := NewMatchSummary("run-1", root, res)
	if s.BytesWouldMove != 12 {
		t.Errorf("BytesWouldMove = %d, want 12 (missing source skipped, not fatal)", s.BytesWouldMove)
	}
}

func TestEventLoggerWritesOneLinePerEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")

	logger, err := NewEventLogger(path, "run-1")
	if err != nil {
		t.Fatal(err)
	}

	res := &match.Result{
		Matches: []match.Match{
			{Source: pathkey.New("a.txt"), Dest: pathkey.New("a.txt")},
			{Source: pathkey.New("b.txt"), Dest: pathkey.New("b2.txt"), HashMatch: true},
		},
		SourceOrphans: []pathkey.RelativePath{pathkey.New("c.txt")},
	}
	logger.LogMatchResult(res)
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var events []Event
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatal(err)
		}
		events = append(events, e)
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Event != EventMatch || events[1].Event != EventHashMatch || events[2].Event != EventSourceOrphan {
		t.Errorf("event types = %+v", events)
	}
	for _, e := range events {
		if e.RunID != "run-1" {
			t.Errorf("event RunID = %q, want run-1", e.RunID)
		}
	}
}

func TestNilEventLoggerIsANoOp(t *testing.T) {
	var logger *EventLogger
	logger.LogMatchResult(&match.Result{Matches: []match.Match{{Source: pathkey.New("a"), Dest: pathkey.New("a")}}})
	logger.LogCopy("a", "a", false, nil)
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil logger returned %v, want nil", err)
	}
	if logger.Path() != "" {
		t.Errorf("Path on nil logger = %q, want empty", logger.Path())
	}
}

func TestNewEventLoggerWithEmptyPathIsNil(t *testing.T) {
	logger, err := NewEventLogger("", "run-1")
	if err != nil || logger != nil {
		t.Errorf("NewEventLogger(\"\", ...) = %v, %v; want nil, nil", logger, err)
	}
}
