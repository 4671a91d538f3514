package synergy

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Counts maps each region to the number of observations that fell exactly
// in it. A region missing from the map has zero observations.
type Counts map[RegionKey]int64

// RegionRecord is one row of the region table.
type RegionRecord struct {
	Key     RegionKey `json:"-"`
	Region  string    `json:"region"`
	Type    string    `json:"type"`
	Count   int64     `json:"count"`
	Rate    float64   `json:"rate"`
	Entropy float64   `json:"entropy"`
}

// Size returns the number of variables in the region.
func (r RegionRecord) Size() int {
	return r.Key.Size()
}

// Entropy returns the base-10 (Hartley) entropy contribution of a rate:
//
//	H(p) = −p · log₁₀(p)    for p > 0
//	H(0) = 0                (0 · log 0 ≡ 0)
//
// H peaks at p = 1/e (≈ 0.1598 hartleys) and is 0 at both p = 0 and p = 1.
func Entropy(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return -rate * math.Log10(rate)
}

// RegionType names a region by its size, e.g. "2-Var Region".
func RegionType(size int) string {
	return fmt.Sprintf("%d-Var Region", size)
}

// RegionTable is the immutable per-region table of an analysis.
type RegionTable struct {
	universe Universe
	records  []RegionRecord
	index    map[RegionKey]int
	total    int64
}

// BuildRegions converts raw region counts into rates and entropies.
//
// The total is the sum of every supplied count. One record is produced per
// region of u.Regions(), in that order; regions absent from counts get
// Count = 0. Fails with ErrInvalidInput on a negative count or a key outside
// the universe, and with ErrDivision when the total is zero.
func BuildRegions(u Universe, counts Counts) (RegionTable, error) {
	const op = "BuildRegions"

	if u.Len() == 0 {
		return RegionTable{}, invalidInput(op, nil, "universe is empty")
	}

	// Visit keys in canonical order so the first violation reported does
	// not depend on map iteration.
	supplied := make([]RegionKey, 0, len(counts))
	for key := range counts {
		supplied = append(supplied, key)
	}
	sort.Slice(supplied, func(i, j int) bool {
		return canonicalLess(supplied[i], supplied[j])
	})

	var total int64
	for _, key := range supplied {
		count := counts[key]
		if !u.Contains(key) {
			return RegionTable{}, invalidInput(op, uint64(key), "region key is not a non-empty subset of the universe")
		}
		if count < 0 {
			return RegionTable{}, invalidInput(op, count,
				fmt.Sprintf("negative count for region %s", u.Label(key)))
		}
		if total > math.MaxInt64-count {
			return RegionTable{}, invalidInput(op, count, "count total overflows int64")
		}
		total += count
	}
	if total == 0 {
		return RegionTable{}, divisionError(op, "total of all counts is zero, rates are undefined")
	}

	keys := u.Regions()
	table := RegionTable{
		universe: u,
		records:  make([]RegionRecord, len(keys)),
		index:    make(map[RegionKey]int, len(keys)),
		total:    total,
	}
	for i, key := range keys {
		count := counts[key]
		rate := float64(count) / float64(total)
		table.records[i] = RegionRecord{
			Key:     key,
			Region:  u.Label(key),
			Type:    RegionType(key.Size()),
			Count:   count,
			Rate:    rate,
			Entropy: Entropy(rate),
		}
		table.index[key] = i
	}

	return table, nil
}

// Universe returns the universe the table was built over.
func (t RegionTable) Universe() Universe {
	return t.universe
}

// Total returns the sum of all supplied counts.
func (t RegionTable) Total() int64 {
	return t.total
}

// Len returns the number of records.
func (t RegionTable) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in canonical order.
func (t RegionTable) Records() []RegionRecord {
	out := make([]RegionRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Lookup returns the record for key.
func (t RegionTable) Lookup(key RegionKey) (RegionRecord, bool) {
	i, ok := t.index[key]
	if !ok {
		return RegionRecord{}, false
	}
	return t.records[i], true
}

// RateSum returns Σ Rate over the table. It is 1 (within float tolerance)
// whenever every supplied count belongs to an enumerated region.
func (t RegionTable) RateSum() float64 {
	rates := make(stats.Float64Data, len(t.records))
	for i, r := range t.records {
		rates[i] = r.Rate
	}
	sum, err := stats.Sum(rates)
	if err != nil {
		return 0 // empty table
	}
	return sum
}
