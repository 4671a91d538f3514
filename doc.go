// Package synergy measures higher-order interaction between variables from
// counts of co-occurring observations.
//
// # Overview
//
// The observations are partitioned into disjoint regions. Each region is
// identified by the subset of the variable universe that co-occurs in it:
// region "IA" holds the observations where exactly I and A occurred. From the
// region counts the package computes, per region, an occurrence rate and a
// base-10 entropy contribution, and then for every combination of two or
// more variables an alternating entropy sum, the T-value.
//
// # Pipeline
//
// Data flows one way, raw counts → region table → T-value table:
//
//   - BuildRegions     - counts to rates and entropies (RegionTable)
//   - RegionTable.TValue - alternating sum for one target subset
//   - EnumerateTValues - T-values for every combination of size ≥ 2
//   - Analyze          - runs all three and adds the validation value
//
// # Quick Start
//
//	u := synergy.MustUniverse("A", "I", "S", "G")
//
//	counts, err := synergy.ParseCounts(u, map[string]float64{
//	    "A": 390952, "I": 99031, "IA": 25682, "GIAS": 97,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := synergy.Analyze(u, counts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, row := range res.TValues {
//	    fmt.Printf("%s %-6s %.8f\n", row.Dimension, row.Combination, row.TValue)
//	}
//
// # Entropy
//
// Each region contributes, in hartleys:
//
//	Rate(r)    = Count(r) / Total
//	H(r)       = −Rate(r) · log₁₀ Rate(r)      (0 when Rate(r) = 0)
//
// Total is the sum of every supplied count. A zero total has no rates and
// fails with ErrDivision.
//
// # T-value
//
// For a target subset T:
//
//	T(T) = Σ_{r ⊆ T} (−1)^(|r|−1) · H(r)
//
// Single variables enter with +1, pairs with −1, triples with +1 and so on:
//
//	T({A,I})   = H(A) + H(I) − H(AI)
//	T({A,I,S}) = H(A) + H(I) + H(S) − H(AI) − H(AS) − H(IS) + H(AIS)
//
// # Region keys
//
// A RegionKey is a bitmask over universe positions, so subset tests and set
// equality are single integer operations. Labels are not limited to one
// character: "G+I+A" always parses, and "GIA" parses when every label of
// the universe is a single rune. Members are rendered in universe order.
//
// # Ordering
//
// Regions are listed by size, then lexicographically over universe
// positions. T-value rows follow the same order starting at size 2. Equal
// inputs always produce byte-identical tables.
//
// # Testing
//
// Verify checks a Result against the analysis laws at runtime. The Assert
// helpers do the same inside tests:
//
//	func TestMyDataset(t *testing.T) {
//	    res, _ := synergy.Analyze(u, counts)
//	    synergy.AssertAnalysis(t, res)
//	}
package synergy
