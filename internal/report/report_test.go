package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexshd/synergy"
	"github.com/alexshd/synergy/internal/dataset"
)

func reference(t *testing.T) synergy.Result {
	t.Helper()
	res, err := dataset.Reference().Analyze()
	require.NoError(t, err)
	return res
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, reference(t), FormatTable))

	out := buf.String()
	for _, want := range []string{
		"Region", "Entropy", "1-Var Region", "4-Var Region",
		"Dimension", "T_Value", "AISG",
		"Total observations: 677895",
		"Validation T(A+I+S+G) = 0.12494478",
	} {
		assert.Contains(t, out, want)
	}

	// One line per region and per combination, plus headers.
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 15+11+2)
}

func TestWrite_JSON(t *testing.T) {
	res := reference(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, FormatJSON))

	var decoded synergy.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, res.Validation, decoded.Validation)
	assert.Equal(t, "AISG", decoded.TValues[len(decoded.TValues)-1].Combination)
	assert.Contains(t, buf.String(), `"t_value"`)
}

func TestWrite_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, reference(t), FormatTable))
	require.NoError(t, Write(&b, reference(t), FormatTable))
	assert.Equal(t, a.String(), b.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}
