package synergy

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestVerify_AcceptsAnalyzeOutput(t *testing.T) {
	res := referenceAnalysis(t)

	if err := Verify(res, DefaultVerifyConfig()); err != nil {
		t.Fatalf("Verify rejected a fresh analysis: %v", err)
	}
}

func TestVerify_SurvivesJSONRoundTrip(t *testing.T) {
	res := referenceAnalysis(t)

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Result
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	// Keys are not serialized; verification works from labels alone.
	if err := Verify(decoded, DefaultVerifyConfig()); err != nil {
		t.Fatalf("Verify rejected decoded result: %v", err)
	}
}

func TestVerify_DetectsViolations(t *testing.T) {
	cases := []struct {
		law    string
		tamper func(*Result)
	}{
		{LawEntropyNonNegative, func(r *Result) { r.Regions[2].Entropy = -0.1 }},
		{LawEntropyDefinition, func(r *Result) { r.Regions[0].Entropy += 1e-6 }},
		{LawRateBounds, func(r *Result) { r.Regions[1].Rate = 1.5 }},
		{LawRateSum, func(r *Result) { r.Regions[0].Rate += 1e-3 }},
		{LawCanonicalOrder, func(r *Result) { r.Regions[0], r.Regions[1] = r.Regions[1], r.Regions[0] }},
		{LawCanonicalOrder, func(r *Result) { r.TValues[0], r.TValues[1] = r.TValues[1], r.TValues[0] }},
		{LawCanonicalOrder, func(r *Result) { r.TValues = r.TValues[:len(r.TValues)-2] }},
		{LawValidationConsistent, func(r *Result) { r.Validation += 1e-6 }},
	}

	for _, tc := range cases {
		t.Run(tc.law, func(t *testing.T) {
			res := referenceAnalysis(t)
			tc.tamper(&res)

			err := Verify(res, VerifyConfig{Laws: []string{tc.law}})
			if !errors.Is(err, ErrInvariant) {
				t.Fatalf("Expected ErrInvariant, got %v", err)
			}
			var e *Error
			if !errors.As(err, &e) || e.Op != tc.law {
				t.Errorf("Error should name law %s, got %v", tc.law, err)
			}
			t.Logf("✓ %v", err)
		})
	}
}

func TestVerify_IncompletePartitionSkipsRateSum(t *testing.T) {
	res := referenceAnalysis(t)
	res.Total += 1000 // observations outside every tabled region

	if err := Verify(res, VerifyConfig{Laws: []string{LawRateSum}}); err != nil {
		t.Errorf("RateSum should not bind on an incomplete partition: %v", err)
	}
}

func TestVerify_UnknownLaw(t *testing.T) {
	res := referenceAnalysis(t)

	err := Verify(res, VerifyConfig{Laws: []string{"Commutative"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown law, got %v", err)
	}
}
