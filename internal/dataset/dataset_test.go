package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexshd/synergy"
)

func TestReference_Analyzes(t *testing.T) {
	res, err := Reference().Analyze()
	require.NoError(t, err)

	assert.Equal(t, int64(677895), res.Total)
	assert.Len(t, res.Regions, 15)
	assert.Len(t, res.TValues, 11)
	assert.NoError(t, synergy.Verify(res, synergy.DefaultVerifyConfig()))
}

func TestDecode_YAML(t *testing.T) {
	src := `
universe: [A, B]
counts:
  A: 3
  B: 1
  AB: 4
`
	d, err := Decode(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, d.Universe)
	assert.Equal(t, 4.0, d.Counts["AB"])

	res, err := d.Analyze()
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Total)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"universe":["A"],"counts":{"A":1},"extra":true}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("universe: [A]\ncounts: {A: 1}\nextra: true\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecode_RequiresUniverseAndCounts(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"counts":{"A":1}}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"universe":["A"]}`), FormatJSON)
	assert.Error(t, err)
}

func TestResolve_InvalidInput(t *testing.T) {
	d := Dataset{Universe: []string{"A", "B"}, Counts: map[string]float64{"AC": 1}}

	_, _, err := d.Resolve()
	assert.True(t, errors.Is(err, synergy.ErrInvalidInput), "got %v", err)
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, Reference(), format))

			path := filepath.Join(dir, "ref."+string(format))
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

			d, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, Reference().Counts, d.Counts)
			assert.Equal(t, Reference().Universe, d.Universe)
		})
	}
}

func TestLoad_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"universe":["A"],"counts":{"A":2}}`), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "survey", d.Name)
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("x.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatOf("x.csv")
	assert.Error(t, err)
}
