package synergy

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// TValueRecord is one row of the T-value table.
type TValueRecord struct {
	Key         RegionKey `json:"-"`
	Dimension   string    `json:"dimension"`
	Combination string    `json:"combination"`
	TValue      float64   `json:"t_value"`
}

// Size returns the number of variables in the combination.
func (r TValueRecord) Size() int {
	return r.Key.Size()
}

// Dimension names a combination by its size, e.g. "3D".
func Dimension(size int) string {
	return fmt.Sprintf("%dD", size)
}

// Sign returns the inclusion-exclusion sign for a region of k variables:
//
//	sign(k) = (−1)^(k−1)    k=1 → +1, k=2 → −1, k=3 → +1, ...
func Sign(k int) float64 {
	if k%2 == 1 {
		return 1
	}
	return -1
}

// TValue computes the alternating entropy sum over every region nested in
// target:
//
//	T(target) = Σ_{r ⊆ target} sign(|r|) · H(r)
//
// For a single variable X, T({X}) = H(X). For a pair,
// T({X,Y}) = H(X) + H(Y) − H(XY). Regions with zero count contribute 0.
//
// An empty target is rejected with ErrInvalidInput rather than defined as 0,
// as is a target reaching outside the table's universe.
//
// Submasks of target are looked up in the table index, so the cost is
// O(2^|target|) instead of a scan of all 2^N regions. The terms are still
// summed in canonical table order, which keeps the result bit-identical to
// a straight scan.
func (t RegionTable) TValue(target RegionKey) (float64, error) {
	const op = "TValue"

	if target == 0 {
		return 0, invalidInput(op, nil, "target subset is empty")
	}
	if !t.universe.Contains(target) {
		return 0, invalidInput(op, uint64(target), "target subset is outside the universe")
	}

	positions := make([]int, 0, 1<<uint(target.Size()))
	for sub := target; sub != 0; sub = (sub - 1) & target {
		if i, ok := t.index[sub]; ok {
			positions = append(positions, i)
		}
	}
	sort.Ints(positions)

	var sum float64
	for _, i := range positions {
		r := t.records[i]
		sum += Sign(r.Key.Size()) * r.Entropy
	}
	return sum, nil
}

// EnumerateTValues computes the T-value of every combination of two or more
// variables.
//
// Rows are grouped by increasing size r = 2..N; within a size, combinations
// follow lexicographic order over variable positions, so repeated runs yield
// identical sequences.
func EnumerateTValues(t RegionTable) ([]TValueRecord, error) {
	n := t.universe.Len()
	if n < 2 {
		return []TValueRecord{}, nil
	}

	size := (1 << uint(n)) - n - 1
	out := make([]TValueRecord, 0, size)
	for r := 2; r <= n; r++ {
		for _, combo := range combin.Combinations(n, r) {
			var key RegionKey
			for _, pos := range combo {
				key |= 1 << uint(pos)
			}
			tv, err := t.TValue(key)
			if err != nil {
				return nil, err
			}
			out = append(out, TValueRecord{
				Key:         key,
				Dimension:   Dimension(r),
				Combination: t.universe.Label(key),
				TValue:      tv,
			})
		}
	}
	return out, nil
}
