package team

import (
	"errors"
	"testing"
)

func TestResolve_KnownForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  string
	}{
		{"patriots", "patriots"},
		{"Patriots", "patriots"},
		{"pats", "patriots"},
		{"NE", "patriots"},
		{"New England", "patriots"},
		{"New England Patriots.", "patriots"},
		{"the patriots", "patriots"},
		{"San Francisco 49ers", "49ers"},
		{"niners", "49ers"},
		{"SF", "49ers"},
		{"Green Bay", "packers"},
		{"gb", "packers"},
		{"Kansas City", "chiefs"},
		{"kc", "chiefs"},
		{"KC Chiefs", "chiefs"},
		{"Tampa Bay", "buccaneers"},
		{"bucs", "buccaneers"},
		{"New Orleans", "saints"},
		{"nola", "saints"},
		{"Los Angeles Chargers", "chargers"},
		{"lac", "chargers"},
		{"philly", "eagles"},
		{"N.Y. Jets", "jets"},
		{"washington", "redskins"},
		{"skins", "redskins"},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.query)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", tc.query, err)
		}
		if got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"", "   ", "\t \n"} {
		if _, err := Resolve(query); !errors.Is(err, ErrNoSelection) {
			t.Fatalf("Resolve(%q) error = %v, want ErrNoSelection", query, err)
		}
	}
}

func TestResolve_UnknownTeam(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"zebras", "the best team", "xyz"} {
		if _, err := Resolve(query); !errors.Is(err, ErrUnknownTeam) {
			t.Fatalf("Resolve(%q) error = %v, want ErrUnknownTeam", query, err)
		}
	}
}

func TestResolve_FirstTokenWins(t *testing.T) {
	t.Parallel()

	// Scan order is fixed: the leftmost resolvable token decides.
	got, err := Resolve("jets over patriots")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != "jets" {
		t.Fatalf("Resolve = %q, want jets", got)
	}
}

func TestIsCanonical(t *testing.T) {
	t.Parallel()

	if !IsCanonical("patriots") {
		t.Fatalf("expected patriots to be canonical")
	}
	if IsCanonical("pats") {
		t.Fatalf("expected alias pats to not be canonical")
	}
}
