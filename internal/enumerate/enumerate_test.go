package enumerate

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkSkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "src", "main.go"))
	mkfile(t, filepath.Join(root, "bin", "main.exe"))
	mkfile(t, filepath.Join(root, ".git", "HEAD"))
	mkfile(t, filepath.Join(root, "src", "obj", "cache.bin"))

	paths, err := Collect(root, Config{})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, p := range paths {
		got = append(got, p.String())
	}
	sort.Strings(got)

	want := []string{"src/main.go"}
	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalkExclusionIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "BIN", "x.dll"))
	mkfile(t, filepath.Join(root, "keep.txt"))

	paths, err := Collect(root, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0].String() != "keep.txt" {
		t.Errorf("expected only keep.txt, got %v", paths)
	}
}

func TestWalkCustomExclusions(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "vendor", "lib.go"))
	mkfile(t, filepath.Join(root, "src", "main.go"))

	paths, err := Collect(root, Config{Excluded: []string{"vendor"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0].String() != "src/main.go" {
		t.Errorf("got %v", paths)
	}
}
