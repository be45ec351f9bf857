package visitors

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim/components"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVOutput_WritesEveryStep(t *testing.T) {
	// GIVEN a model with a CSV visitor
	_, core := buildModel(t, forcedModel)
	var buf bytes.Buffer
	out := NewCSVOutput(&buf)
	core.AddVisitor(out)

	// WHEN running two steps
	require.NoError(t, core.PrepareToRun())
	require.NoError(t, core.Run(2))
	require.NoError(t, out.Close())

	// THEN there is a header and four rows per date (co2, y, slope, c)
	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 1+2*4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{core.RunID(), "1", "forcing", "co2"}, rows[1][:4])
	assert.Equal(t, "ppmv CO2", rows[1][5])

	last := rows[len(rows)-3]
	assert.Equal(t, []string{"2", "dummy", "y"}, last[1:4])
	y, err := strconv.ParseFloat(last[4], 64)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, y, 1e-9)
}

func TestCSVOutput_EveryFiltersDates(t *testing.T) {
	_, core := buildModel(t, forcedModel)
	var buf bytes.Buffer
	out := NewCSVOutput(&buf)
	out.Every = 5
	core.AddVisitor(out)

	require.NoError(t, core.PrepareToRun())
	require.NoError(t, core.Run(10))
	require.NoError(t, out.Close())

	dates := map[string]bool{}
	for _, r := range readRows(t, buf.Bytes())[1:] {
		dates[r[1]] = true
	}
	assert.Equal(t, map[string]bool{"5": true, "10": true}, dates)
}

func TestCSVOutput_GenericFallbackWritesScalarVariables(t *testing.T) {
	_, core := buildModel(t, forcedModel)
	var buf bytes.Buffer
	out := NewCSVOutput(&buf)
	require.NoError(t, out.VisitCore(core))

	require.NoError(t, out.VisitComponent(core.Component("dummy").(*components.Dummy)))
	require.NoError(t, out.Close())

	rows := readRows(t, buf.Bytes())[1:]
	vars := make([]string, len(rows))
	for i, r := range rows {
		vars[i] = r[3]
	}
	assert.Equal(t, []string{"slope", "x", "y"}, vars)
}

func TestCreateCSVOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, core := buildModel(t, forcedModel)
	out, err := CreateCSVOutput(path)
	require.NoError(t, err)
	core.AddVisitor(out)

	require.NoError(t, core.Execute())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, readRows(t, data), 1+10*4)
}

func TestCreateCSVOutput_BadPath(t *testing.T) {
	_, err := CreateCSVOutput(filepath.Join(t.TempDir(), "missing", "out.csv"))

	assert.ErrorContains(t, err, "creating csv output")
}
