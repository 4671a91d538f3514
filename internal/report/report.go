// Package report renders analysis results for people and pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alexshd/synergy"
)

// Format selects the rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("report: unknown format %q (want table or json)", s)
	}
}

// Write renders res to w.
func Write(w io.Writer, res synergy.Result, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatTable:
		return writeTables(w, res)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func writeTables(w io.Writer, res synergy.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "Region\tType\tCount\tRate\tEntropy\t")
	for _, r := range res.Regions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.6f\t%.6f\t\n", r.Region, r.Type, r.Count, r.Rate, r.Entropy)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")

	fmt.Fprintln(tw, "Dimension\tCombination\tT_Value\t")
	for _, r := range res.TValues {
		fmt.Fprintf(tw, "%s\t%s\t%.8f\t\n", r.Dimension, r.Combination, r.TValue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal observations: %d\nValidation T(%s) = %.8f\n",
		res.Total, strings.Join(res.Universe, "+"), res.Validation)
	return err
}
