package synergy

import (
	"errors"
	"math"
	"testing"
)

func TestParseCounts_Reference(t *testing.T) {
	u := MustUniverse("A", "I", "S", "G")
	counts, err := ParseCounts(u, referenceCounts())
	if err != nil {
		t.Fatal(err)
	}

	if len(counts) != 15 {
		t.Fatalf("Expected 15 regions, got %d", len(counts))
	}

	ga, _ := u.Key("G", "A")
	if counts[ga] != 119705 {
		t.Errorf("Count(GA) = %d, want 119705", counts[ga])
	}

	labelled := u.Labelled(counts)
	if labelled["AG"] != 119705 {
		t.Errorf("Labelled should use canonical label AG, got %v", labelled)
	}
}

func TestParseCounts_Rejects(t *testing.T) {
	u := MustUniverse("A", "I", "S", "G")

	cases := map[string]map[string]float64{
		"NaN":               {"A": math.NaN()},
		"+Inf":              {"A": math.Inf(1)},
		"-Inf":              {"A": math.Inf(-1)},
		"negative":          {"A": -1},
		"fractional":        {"A": 1.5},
		"overflow":          {"A": math.MaxInt64},
		"unknown variable":  {"AX": 3},
		"same region twice": {"IA": 3, "AI": 4},
		"empty key":         {"": 3},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCounts(u, raw)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Expected ErrInvalidInput, got %v", err)
			}
			t.Logf("✓ %v", err)
		})
	}
}

func TestParseCounts_ZeroIsKept(t *testing.T) {
	u := MustUniverse("A", "B")
	counts, err := ParseCounts(u, map[string]float64{"A": 0, "B": 2})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := u.Key("A")
	if c, ok := counts[a]; !ok || c != 0 {
		t.Errorf("Zero count should be kept explicitly, got %d, %v", c, ok)
	}
}
