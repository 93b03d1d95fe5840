package destindex

import (
	"testing"

	"github.com/ethereal77/codesync/internal/pathkey"
)

func paths(ss ...string) []pathkey.RelativePath {
	out := make([]pathkey.RelativePath, len(ss))
	for i, s := range ss {
		out[i] = pathkey.New(s)
	}
	return out
}

func TestBuildSingleAndMulti(t *testing.T) {
	idx := New(paths("app/ui/Button.cs", "tests/Button.cs", "lib/util.c"))

	if idx.Count() != 3 {
		t.Fatalf("count = %d, want 3", idx.Count())
	}

	e, ok := idx.Lookup("Button.cs")
	if !ok || e.Multi == nil || len(e.Multi) != 2 {
		t.Fatalf("expected Multi entry with 2 candidates, got %+v", e)
	}

	e2, ok := idx.Lookup("util.c")
	if !ok || e2.Single == nil {
		t.Fatalf("expected Single entry, got %+v", e2)
	}
}

func TestRemoveEntireEntry(t *testing.T) {
	idx := New(paths("a/x.txt", "b/y.txt"))
	idx.Remove("x.txt")

	if _, ok := idx.Lookup("x.txt"); ok {
		t.Fatal("expected x.txt entry removed")
	}
	if idx.Count() != 1 {
		t.Fatalf("count = %d, want 1", idx.Count())
	}
}

func TestRemovePathCollapsesMultiToSingle(t *testing.T) {
	idx := New(paths("app/ui/Button.cs", "tests/Button.cs"))
	idx.RemovePath("Button.cs", pathkey.New("tests/Button.cs"))

	e, ok := idx.Lookup("Button.cs")
	if !ok {
		t.Fatal("expected entry to remain with one candidate")
	}
	if e.Single == nil || !e.Single.Equal(pathkey.New("app/ui/Button.cs")) {
		t.Fatalf("expected collapse to Single(app/ui/Button.cs), got %+v", e)
	}
	if idx.Count() != 1 {
		t.Fatalf("count = %d, want 1", idx.Count())
	}
}

func TestRemovePathEmptiesEntry(t *testing.T) {
	idx := New(paths("a/x.txt"))
	idx.RemovePath("x.txt", pathkey.New("a/x.txt"))

	if _, ok := idx.Lookup("x.txt"); ok {
		t.Fatal("expected entry removed once empty")
	}
	if idx.Count() != 0 {
		t.Fatalf("count = %d, want 0", idx.Count())
	}
}

func TestCountInvariantAcrossOperations(t *testing.T) {
	idx := New(paths("a/x.txt", "b/x.txt", "c/x.txt", "d/y.txt"))
	initial := idx.Count()
	if initial != 4 {
		t.Fatalf("initial count = %d, want 4", initial)
	}

	idx.RemovePath("x.txt", pathkey.New("b/x.txt"))
	idx.Remove("y.txt")

	e, _ := idx.Lookup("x.txt")
	want := len(e.Paths())
	if idx.Count() != want {
		t.Fatalf("count = %d, want %d (sum of candidates)", idx.Count(), want)
	}
}
