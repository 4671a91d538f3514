package synergy

import (
	"fmt"
	"math"
)

// Laws a Result can be checked against at runtime.
const (
	LawEntropyNonNegative   = "EntropyNonNegative"
	LawEntropyDefinition    = "EntropyDefinition"
	LawRateBounds           = "RateBounds"
	LawRateSum              = "RateSum"
	LawCanonicalOrder       = "CanonicalOrder"
	LawValidationConsistent = "ValidationConsistent"
)

// AllLaws lists every law Verify knows, in the order they are checked.
var AllLaws = []string{
	LawEntropyNonNegative,
	LawEntropyDefinition,
	LawRateBounds,
	LawRateSum,
	LawCanonicalOrder,
	LawValidationConsistent,
}

// VerifyConfig selects laws and the float tolerance they are held to.
type VerifyConfig struct {
	// Absolute tolerance for float comparisons.
	Tolerance float64

	// Laws to check. Empty means AllLaws.
	Laws []string
}

// DefaultVerifyConfig checks every law at 1e-9.
func DefaultVerifyConfig() VerifyConfig {
	return VerifyConfig{
		Tolerance: 1e-9,
		Laws:      AllLaws,
	}
}

// Verify checks a Result received from outside (decoded from storage, an
// HTTP body, a golden file) against the laws every analysis must satisfy.
// The first violation is returned as ErrInvariant naming the law.
//
// RateSum only binds when every counted observation falls in a tabled
// region, i.e. Σ Count = Total; that is always the case for Results
// produced by Analyze.
func Verify(res Result, cfg VerifyConfig) error {
	laws := cfg.Laws
	if len(laws) == 0 {
		laws = AllLaws
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = DefaultVerifyConfig().Tolerance
	}

	for _, law := range laws {
		var err error
		switch law {
		case LawEntropyNonNegative:
			err = checkEntropyNonNegative(res)
		case LawEntropyDefinition:
			err = checkEntropyDefinition(res, tol)
		case LawRateBounds:
			err = checkRateBounds(res)
		case LawRateSum:
			err = checkRateSum(res, tol)
		case LawCanonicalOrder:
			err = checkCanonicalOrder(res)
		case LawValidationConsistent:
			err = checkValidation(res, tol)
		default:
			return invalidInput("Verify", law, "unknown law")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func checkEntropyNonNegative(res Result) error {
	for _, r := range res.Regions {
		if r.Entropy < 0 || math.IsNaN(r.Entropy) {
			return invariantError(LawEntropyNonNegative, r.Entropy,
				fmt.Sprintf("region %s has negative entropy", r.Region))
		}
	}
	return nil
}

func checkEntropyDefinition(res Result, tol float64) error {
	for _, r := range res.Regions {
		if want := Entropy(r.Rate); math.Abs(r.Entropy-want) > tol {
			return invariantError(LawEntropyDefinition, r.Entropy,
				fmt.Sprintf("region %s entropy differs from -p·log10(p) = %g", r.Region, want))
		}
	}
	return nil
}

func checkRateBounds(res Result) error {
	for _, r := range res.Regions {
		if r.Rate < 0 || r.Rate > 1 || math.IsNaN(r.Rate) {
			return invariantError(LawRateBounds, r.Rate,
				fmt.Sprintf("region %s rate outside [0,1]", r.Region))
		}
	}
	return nil
}

func checkRateSum(res Result, tol float64) error {
	var counted int64
	var sum float64
	for _, r := range res.Regions {
		counted += r.Count
		sum += r.Rate
	}
	if counted != res.Total {
		// Partition is incomplete: some observations lie outside the table.
		return nil
	}
	if math.Abs(sum-1) > tol {
		return invariantError(LawRateSum, sum, "rates of a complete partition do not sum to 1")
	}
	return nil
}

func checkCanonicalOrder(res Result) error {
	u, err := NewUniverse(res.Universe...)
	if err != nil {
		return invariantError(LawCanonicalOrder, res.Universe, err.Error())
	}

	regions := u.Regions()
	if len(res.Regions) != len(regions) {
		return invariantError(LawCanonicalOrder, len(res.Regions),
			fmt.Sprintf("expected %d regions", len(regions)))
	}
	for i, key := range regions {
		if got, want := res.Regions[i].Region, u.Label(key); got != want {
			return invariantError(LawCanonicalOrder, got,
				fmt.Sprintf("region row %d should be %s", i, want))
		}
	}

	var prev RegionKey
	for i, row := range res.TValues {
		key, err := u.ParseKey(row.Combination)
		if err != nil {
			return invariantError(LawCanonicalOrder, row.Combination, err.Error())
		}
		if key.Size() < 2 || row.Dimension != Dimension(key.Size()) {
			return invariantError(LawCanonicalOrder, row.Dimension,
				fmt.Sprintf("t-value row %d has a bad dimension", i))
		}
		if i > 0 && !canonicalLess(prev, key) {
			return invariantError(LawCanonicalOrder, row.Combination,
				fmt.Sprintf("t-value row %d is out of order", i))
		}
		prev = key
	}
	if n := u.Len(); n >= 2 && len(res.TValues) != (1<<uint(n))-n-1 {
		return invariantError(LawCanonicalOrder, len(res.TValues),
			fmt.Sprintf("expected %d t-value rows", (1<<uint(n))-n-1))
	}
	return nil
}

func checkValidation(res Result, tol float64) error {
	row, ok := res.FullRow()
	if !ok {
		if len(res.Universe) >= 2 {
			return invariantError(LawValidationConsistent, nil, "t-value table has no full-universe row")
		}
		return nil
	}
	if math.Abs(row.TValue-res.Validation) > tol {
		return invariantError(LawValidationConsistent, res.Validation,
			fmt.Sprintf("validation differs from T(%s) = %g", row.Combination, row.TValue))
	}
	return nil
}
