package synergy

import (
	"fmt"
	"math"
	"sort"
)

// ParseCounts decodes a label-keyed count mapping, as read from JSON or
// YAML, into Counts over u.
//
// Rejected with ErrInvalidInput:
//   - a label that names an unknown variable or repeats one
//   - NaN, ±Inf, negative or fractional counts
//   - two labels naming the same region ("IA" and "AI")
//
// Zero counts are kept; they are equivalent to leaving the region out.
func ParseCounts(u Universe, raw map[string]float64) (Counts, error) {
	const op = "ParseCounts"

	labels := make([]string, 0, len(raw))
	for label := range raw {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	counts := make(Counts, len(raw))
	seen := make(map[RegionKey]string, len(raw))
	for _, label := range labels {
		value := raw[label]
		switch {
		case math.IsNaN(value) || math.IsInf(value, 0):
			return nil, invalidInput(op, value, fmt.Sprintf("count for %q is not finite", label))
		case value < 0:
			return nil, invalidInput(op, value, fmt.Sprintf("count for %q is negative", label))
		case value != math.Trunc(value):
			return nil, invalidInput(op, value, fmt.Sprintf("count for %q is not a whole number", label))
		case value >= math.MaxInt64:
			return nil, invalidInput(op, value, fmt.Sprintf("count for %q overflows int64", label))
		}

		key, err := u.ParseKey(label)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[key]; dup {
			return nil, invalidInput(op, label,
				fmt.Sprintf("region %s is already given as %q", u.Label(key), prev))
		}
		seen[key] = label
		counts[key] = int64(value)
	}
	return counts, nil
}

// Labelled renders counts back to canonical labels.
func (u Universe) Labelled(counts Counts) map[string]int64 {
	out := make(map[string]int64, len(counts))
	for key, count := range counts {
		out[u.Label(key)] = count
	}
	return out
}
