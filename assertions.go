package synergy

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

// AssertionConfig contains tolerances for the analysis laws.
type AssertionConfig struct {
	// Absolute tolerance for float comparisons
	Tolerance float64

	// Number of repeated runs for determinism checks
	Repeats int
}

// DefaultAssertionConfig returns the tolerances used across the package tests.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		Tolerance: 1e-9,
		Repeats:   5,
	}
}

// AssertEntropyLaw verifies H(p) = −p·log₁₀(p) for every region and H ≥ 0.
//
// Mathematical property:
//
//	H(0) = 0, H(1) = 0, H(p) > 0 for 0 < p < 1
func AssertEntropyLaw(t *testing.T, res Result, cfg AssertionConfig) {
	t.Helper()

	for _, r := range res.Regions {
		want := 0.0
		if r.Rate > 0 {
			want = -r.Rate * math.Log10(r.Rate)
		}
		if math.Abs(r.Entropy-want) > cfg.Tolerance {
			t.Errorf("Region %s: entropy = %.12f, want %.12f (rate %.12f)",
				r.Region, r.Entropy, want, r.Rate)
		}
		if r.Entropy < 0 {
			t.Errorf("Region %s: negative entropy %.12f", r.Region, r.Entropy)
		}
	}

	t.Logf("✓ Entropy law holds for %d regions", len(res.Regions))
}

// AssertRatesSumToOne verifies Σ Rate = 1 over a complete partition.
func AssertRatesSumToOne(t *testing.T, res Result, cfg AssertionConfig) {
	t.Helper()

	var sum float64
	var counted int64
	for _, r := range res.Regions {
		sum += r.Rate
		counted += r.Count
	}

	if counted != res.Total {
		t.Fatalf("Partition is incomplete: regions hold %d of %d observations", counted, res.Total)
	}
	if math.Abs(sum-1) > cfg.Tolerance {
		t.Errorf("Σ Rate = %.15f, want 1 (tolerance %g)", sum, cfg.Tolerance)
	}

	t.Logf("✓ Σ Rate = %.15f", sum)
}

// AssertValidationConsistent verifies the validation value equals the
// full-universe row of the T-value table.
func AssertValidationConsistent(t *testing.T, res Result, cfg AssertionConfig) {
	t.Helper()

	row, ok := res.FullRow()
	if !ok {
		if len(res.Universe) >= 2 {
			t.Fatalf("T-value table has no %s row", Dimension(len(res.Universe)))
		}
		return
	}
	if math.Abs(row.TValue-res.Validation) > cfg.Tolerance {
		t.Errorf("Validation %.12f differs from T(%s) = %.12f",
			res.Validation, row.Combination, row.TValue)
	}

	t.Logf("✓ Validation T(%s) = %.12f", row.Combination, res.Validation)
}

// AssertDeterministic runs analyze cfg.Repeats times and requires every
// result to be identical to the first.
func AssertDeterministic(t *testing.T, analyze func() (Result, error), cfg AssertionConfig) {
	t.Helper()

	first, err := analyze()
	if err != nil {
		t.Fatalf("Analysis failed: %v", err)
	}

	repeats := cfg.Repeats
	if repeats < 2 {
		repeats = 2
	}
	for i := 1; i < repeats; i++ {
		again, err := analyze()
		if err != nil {
			t.Fatalf("Run %d failed: %v", i+1, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d differs from run 1", i+1)
		}
	}

	t.Logf("✓ %d runs produced identical tables", repeats)
}

// AssertAnalysis runs every assertion above except determinism.
func AssertAnalysis(t *testing.T, res Result) {
	t.Helper()

	cfg := DefaultAssertionConfig()

	t.Run("EntropyLaw", func(t *testing.T) {
		AssertEntropyLaw(t, res, cfg)
	})

	t.Run("RatesSumToOne", func(t *testing.T) {
		AssertRatesSumToOne(t, res, cfg)
	})

	t.Run("ValidationConsistent", func(t *testing.T) {
		AssertValidationConsistent(t, res, cfg)
	})
}

// PrintAnalysis logs both tables for manual inspection.
func PrintAnalysis(t *testing.T, res Result) {
	t.Helper()

	t.Logf("\n=== Analysis over %s (total %d) ===", strings.Join(res.Universe, ", "), res.Total)
	t.Logf("%-12s %-14s %10s %12s %12s", "Region", "Type", "Count", "Rate", "Entropy")
	t.Logf("%s", strings.Repeat("-", 64))
	for _, r := range res.Regions {
		t.Logf("%-12s %-14s %10d %12.6f %12.6f", r.Region, r.Type, r.Count, r.Rate, r.Entropy)
	}

	t.Logf("")
	t.Logf("%-10s %-12s %14s", "Dimension", "Combination", "T_Value")
	t.Logf("%s", strings.Repeat("-", 38))
	for _, r := range res.TValues {
		t.Logf("%-10s %-12s %14.8f", r.Dimension, r.Combination, r.TValue)
	}

	t.Logf("")
	t.Logf("%s", fmt.Sprintf("Validation T(%s) = %.8f", strings.Join(res.Universe, ""), res.Validation))
}
