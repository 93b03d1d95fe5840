package pathkey

import "testing"

func TestEqualCaseInsensitive(t *testing.T) {
	a := New("src/README.md")
	b := New("SRC/readme.MD")
	if !a.Equal(b) {
		t.Errorf("expected %q to equal %q", a, b)
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		path RelativePath
		want string
	}{
		{New("a/b/c.txt"), "c.txt"},
		{New("c.txt"), "c.txt"},
		{New("a/b/"), ""},
	}
	for _, tt := range tests {
		if got := tt.path.Base(); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRankExactPrefersDeepMatch(t *testing.T) {
	source := New("src/ui/Button.cs")
	inApp := New("app/ui/Button.cs")
	inTests := New("tests/Button.cs")

	rankApp := Rank(source, inApp)
	rankTests := Rank(source, inTests)

	if rankApp >= rankTests {
		t.Errorf("expected app/ui/Button.cs (rank %d) to rank ahead of tests/Button.cs (rank %d)", rankApp, rankTests)
	}
}

func TestRankCandidatesOrdersAscending(t *testing.T) {
	source := New("src/ui/Button.cs")
	candidates := []RelativePath{New("tests/Button.cs"), New("app/ui/Button.cs")}

	ranked := RankCandidates(source, candidates)
	if ranked[0] != New("app/ui/Button.cs") {
		t.Errorf("expected app/ui/Button.cs first, got %v", ranked)
	}
}

func TestRankCandidatesSkipsWhenFewerThanTwo(t *testing.T) {
	source := New("src/ui/Button.cs")
	single := []RelativePath{New("tests/Button.cs")}

	ranked := RankCandidates(source, single)
	if len(ranked) != 1 || ranked[0] != single[0] {
		t.Errorf("expected single candidate unchanged, got %v", ranked)
	}
}

func TestRankCandidatesPreservesTieOrder(t *testing.T) {
	source := New("x/Button.cs")
	candidates := []RelativePath{New("a/Button.cs"), New("b/Button.cs")}

	ranked := RankCandidates(source, candidates)
	if ranked[0] != candidates[0] || ranked[1] != candidates[1] {
		t.Errorf("expected tie order preserved, got %v", ranked)
	}
}
