package synergy

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Result is the complete output of one analysis.
//
// Validation is the T-value of the full universe, computed independently of
// the T-value table as a cross-check against its last row.
type Result struct {
	Universe   []string       `json:"universe"`
	Total      int64          `json:"total"`
	Regions    []RegionRecord `json:"regions"`
	TValues    []TValueRecord `json:"t_values"`
	Validation float64        `json:"validation"`
}

// FullRow returns the T-value row covering the whole universe, if present.
// Universes of a single variable have no T-value rows.
func (r Result) FullRow() (TValueRecord, bool) {
	if len(r.TValues) == 0 {
		return TValueRecord{}, false
	}
	last := r.TValues[len(r.TValues)-1]
	if last.Dimension != Dimension(len(r.Universe)) {
		return TValueRecord{}, false
	}
	return last, true
}

// Analyze runs the whole pipeline: region table, T-value table, validation.
//
// It is a pure function of its inputs; nothing is printed or persisted. Any
// failure is returned as-is and no partial result is produced.
//
// Example:
//
//	u := synergy.MustUniverse("A", "I", "S", "G")
//	counts, err := synergy.ParseCounts(u, map[string]float64{"A": 390952, "IA": 25682, ...})
//	if err != nil {
//	    return err
//	}
//	res, err := synergy.Analyze(u, counts)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("T(AISG) = %.6f\n", res.Validation)
func Analyze(u Universe, counts Counts) (Result, error) {
	return quiet.Run(context.Background(), u, counts)
}

var quiet = NewAnalyzer(nil)

// Analyzer runs Analyze with stage logging.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil logger discards output.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{logger: logger}
}

// Run analyzes counts over u, logging each stage at debug level.
func (a *Analyzer) Run(ctx context.Context, u Universe, counts Counts) (Result, error) {
	start := time.Now()

	table, err := BuildRegions(u, counts)
	if err != nil {
		a.logger.WarnContext(ctx, "region table rejected", "err", err, "code", CodeOf(err))
		return Result{}, err
	}
	a.logger.DebugContext(ctx, "region table built",
		"variables", u.Len(),
		"regions", table.Len(),
		"total", table.Total(),
		"rate_sum", table.RateSum())

	tvalues, err := EnumerateTValues(table)
	if err != nil {
		return Result{}, err
	}
	validation, err := table.TValue(u.Full())
	if err != nil {
		return Result{}, err
	}
	a.logger.DebugContext(ctx, "t-values computed",
		"combinations", len(tvalues),
		"validation", validation,
		"elapsed", time.Since(start))

	return Result{
		Universe:   u.Labels(),
		Total:      table.Total(),
		Regions:    table.Records(),
		TValues:    tvalues,
		Validation: validation,
	}, nil
}
