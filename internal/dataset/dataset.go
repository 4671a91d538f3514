// Package dataset loads region count datasets from JSON or YAML.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexshd/synergy"
)

// Format is a dataset file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Dataset is a serialized analysis input.
//
//	universe: [A, I, S, G]
//	counts:
//	  A: 390952
//	  IA: 25682
type Dataset struct {
	Name     string             `json:"name,omitempty" yaml:"name,omitempty"`
	Universe []string           `json:"universe" yaml:"universe" binding:"required,min=1"`
	Counts   map[string]float64 `json:"counts" yaml:"counts" binding:"required"`
}

// Resolve validates the dataset into core types.
func (d Dataset) Resolve() (synergy.Universe, synergy.Counts, error) {
	u, err := synergy.NewUniverse(d.Universe...)
	if err != nil {
		return synergy.Universe{}, nil, err
	}
	counts, err := synergy.ParseCounts(u, d.Counts)
	if err != nil {
		return synergy.Universe{}, nil, err
	}
	return u, counts, nil
}

// Analyze resolves the dataset and runs the analysis.
func (d Dataset) Analyze() (synergy.Result, error) {
	u, counts, err := d.Resolve()
	if err != nil {
		return synergy.Result{}, err
	}
	return synergy.Analyze(u, counts)
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("dataset: unsupported file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads a dataset file, choosing the decoder by extension.
func Load(path string) (Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Dataset{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	d, err := Decode(f, format)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Decode reads one dataset from r.
func Decode(r io.Reader, format Format) (Dataset, error) {
	var d Dataset
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return Dataset{}, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return Dataset{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return Dataset{}, fmt.Errorf("unknown format %q", format)
	}

	if len(d.Universe) == 0 {
		return Dataset{}, fmt.Errorf("dataset declares no universe")
	}
	if d.Counts == nil {
		return Dataset{}, fmt.Errorf("dataset has no counts")
	}
	return d, nil
}

// Encode writes d in the given format.
func Encode(w io.Writer, d Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Reference returns the four-variable reference dataset.
func Reference() Dataset {
	return Dataset{
		Name:     "reference",
		Universe: []string{"A", "I", "S", "G"},
		Counts: map[string]float64{
			"A":    390952,
			"I":    99031,
			"S":    19977,
			"G":    5718,
			"IA":   25682,
			"AS":   5627,
			"IS":   3742,
			"GA":   119705,
			"GI":   478,
			"GS":   274,
			"IAS":  815,
			"GIA":  4573,
			"GAS":  1209,
			"GIS":  15,
			"GIAS": 97,
		},
	}
}
