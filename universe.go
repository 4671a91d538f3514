package synergy

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxVariables bounds the universe size.
//
// The region table holds 2^N−1 records and the T-value table 2^N−N−1 rows,
// each summing up to 2^r terms, so total work grows as 3^N:
//   - N = 4:  15 regions, 11 combinations (the reference dataset)
//   - N = 10: 1023 regions, ~59k terms
//   - N = 16: 65535 regions, ~43M terms
const MaxVariables = 16

// RegionKey identifies a region by the set of variables that co-occur in it.
//
// Bit i is set when the i-th variable of the owning Universe is a member.
// Equality is set equality and subset checks are single bitwise operations,
// so "IA" and "AI" parse to the same key.
type RegionKey uint64

// Size returns the number of variables in the key.
func (k RegionKey) Size() int {
	return bits.OnesCount64(uint64(k))
}

// SubsetOf reports whether every variable of k is also in t.
func (k RegionKey) SubsetOf(t RegionKey) bool {
	return k&^t == 0
}

// Has reports whether the variable at position i is a member.
func (k RegionKey) Has(i int) bool {
	return k&(1<<uint(i)) != 0
}

// Universe is the ordered set of variables an analysis runs over.
//
// Declaration order is the canonical order: it drives member ordering inside
// labels and the tie-break between regions of equal size.
type Universe struct {
	labels []string
	index  map[string]int
	joiner string
}

// NewUniverse declares a universe from its variable labels in canonical order.
func NewUniverse(labels ...string) (Universe, error) {
	const op = "NewUniverse"

	if len(labels) == 0 {
		return Universe{}, invalidInput(op, nil, "universe must declare at least one variable")
	}
	if len(labels) > MaxVariables {
		return Universe{}, invalidInput(op, len(labels),
			fmt.Sprintf("universe declares %d variables, limit is %d", len(labels), MaxVariables))
	}

	u := Universe{
		labels: make([]string, len(labels)),
		index:  make(map[string]int, len(labels)),
		joiner: "",
	}
	for i, label := range labels {
		if label == "" {
			return Universe{}, invalidInput(op, i, "variable label is empty")
		}
		if strings.IndexFunc(label, isKeySeparator) >= 0 {
			return Universe{}, invalidInput(op, label, "variable label contains a key separator")
		}
		if _, dup := u.index[label]; dup {
			return Universe{}, invalidInput(op, label, "duplicate variable label")
		}
		if utf8.RuneCountInString(label) > 1 {
			u.joiner = "+"
		}
		u.labels[i] = label
		u.index[label] = i
	}

	return u, nil
}

// MustUniverse is like NewUniverse but panics on error.
// Use for literal universes known to be valid.
func MustUniverse(labels ...string) Universe {
	u, err := NewUniverse(labels...)
	if err != nil {
		panic(fmt.Sprintf("synergy: %v", err))
	}
	return u
}

// Len returns the number of variables N.
func (u Universe) Len() int {
	return len(u.labels)
}

// Labels returns a copy of the variable labels in canonical order.
func (u Universe) Labels() []string {
	out := make([]string, len(u.labels))
	copy(out, u.labels)
	return out
}

// Full returns the key containing every variable.
func (u Universe) Full() RegionKey {
	return RegionKey(1)<<uint(len(u.labels)) - 1
}

// Contains reports whether k is a non-empty key over this universe.
func (u Universe) Contains(k RegionKey) bool {
	return k != 0 && k.SubsetOf(u.Full())
}

// Key builds a key from individual variable labels.
func (u Universe) Key(labels ...string) (RegionKey, error) {
	const op = "Key"

	if len(labels) == 0 {
		return 0, invalidInput(op, nil, "region key is empty")
	}

	var k RegionKey
	for _, label := range labels {
		i, ok := u.index[label]
		if !ok {
			return 0, invalidInput(op, label, "variable is not in the declared universe")
		}
		bit := RegionKey(1) << uint(i)
		if k&bit != 0 {
			return 0, invalidInput(op, label, "variable appears twice in region key")
		}
		k |= bit
	}
	return k, nil
}

// ParseKey parses a serialized region key.
//
// Members may be separated by '+', ',' or whitespace ("G+I+A"). When every
// label in the universe is a single rune the concatenated form ("GIA") is
// accepted as well. Member order is irrelevant.
func (u Universe) ParseKey(s string) (RegionKey, error) {
	fields := strings.FieldsFunc(s, isKeySeparator)
	if len(fields) == 1 && u.joiner == "" {
		if _, known := u.index[fields[0]]; !known {
			fields = splitRunes(fields[0])
		}
	}
	k, err := u.Key(fields...)
	if err != nil {
		return 0, withOp(err, "ParseKey", s)
	}
	return k, nil
}

// Label renders k with members in canonical order.
func (u Universe) Label(k RegionKey) string {
	members := make([]string, 0, k.Size())
	for i, label := range u.labels {
		if k.Has(i) {
			members = append(members, label)
		}
	}
	return strings.Join(members, u.joiner)
}

// Regions enumerates every non-empty subset of the universe in canonical
// order: ascending by size, then lexicographically over variable positions.
//
// For universe (A, I, S, G):
//
//	A I S G  AI AS AG IS IG SG  AIS AIG ASG ISG  AISG
func (u Universe) Regions() []RegionKey {
	n := len(u.labels)
	keys := make([]RegionKey, 0, (1<<uint(n))-1)
	for k := RegionKey(1); k <= u.Full(); k++ {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return canonicalLess(keys[i], keys[j])
	})
	return keys
}

// canonicalLess orders keys by size, then by the sorted member positions.
func canonicalLess(a, b RegionKey) bool {
	if sa, sb := a.Size(), b.Size(); sa != sb {
		return sa < sb
	}
	// Same size: the first differing position decides; the key owning the
	// lower position comes first.
	diff := a ^ b
	if diff == 0 {
		return false
	}
	lowest := diff & -diff
	return a&lowest != 0
}

func isKeySeparator(r rune) bool {
	return r == '+' || r == ',' || unicode.IsSpace(r)
}

func splitRunes(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
