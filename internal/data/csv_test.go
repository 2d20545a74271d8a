package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-battery-sim/internal/model"
)

func TestReadCSV_SemicolonDecimalCommaKW(t *testing.T) {
	in := "Horodatage;Production;Consommation\n" +
		"2024-06-21 10:00;2,0;0,4\n" +
		"2024-06-21 10:15;1,6;0,8\n" +
		"\n" +
		"2024-06-21 10:30;0;1,2\n"

	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{
		TimeColumn:        "horodatage",
		ProductionColumn:  "production",
		ConsumptionColumn: "CONSOMMATION",
		Unit:              UnitKW,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.25, ds.StepHours, 1e-12)
	require.Len(t, ds.Production, 3)
	assert.InDelta(t, 500, ds.Production[0].Wh, 1e-9)
	assert.InDelta(t, 400, ds.Production[1].Wh, 1e-9)
	assert.InDelta(t, 300, ds.Consumption[2].Wh, 1e-9)
	assert.Equal(t, time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC), ds.Production[2].Time)
	assert.Equal(t, ds.Production[1].Time, ds.Consumption[1].Time)
}

func TestReadCSV_NoTimeColumnUsesDefaultStep(t *testing.T) {
	in := "prod,cons\n100,50\n0,70\n"
	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{
		ProductionColumn:  "prod",
		ConsumptionColumn: "cons",
		Unit:              UnitW,
	})
	require.NoError(t, err)
	assert.InDelta(t, DefaultStepHours, ds.StepHours, 1e-12)
	assert.InDelta(t, 25, ds.Production[0].Wh, 1e-9)
	assert.InDelta(t, 17.5, ds.Consumption[1].Wh, 1e-9)
	assert.True(t, ds.Production[0].Time.IsZero())
}

func TestReadCSV_ExplicitStepAndKWh(t *testing.T) {
	in := "time\tpv\tload\n2024-01-01T00:00:00Z\t0.5\t0.25\n2024-01-01T01:00:00Z\t0\t1\n"
	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{
		TimeColumn:        "time",
		ProductionColumn:  "pv",
		ConsumptionColumn: "load",
		Unit:              UnitKWh,
		StepHours:         1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 500, ds.Production[0].Wh, 1e-9)
	assert.InDelta(t, 1000, ds.Consumption[1].Wh, 1e-9)
}

func TestReadCSV_Errors(t *testing.T) {
	opts := CSVOptions{TimeColumn: "t", ProductionColumn: "p", ConsumptionColumn: "c"}

	_, err := ReadCSV(strings.NewReader("t,p,x\n"), opts)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = ReadCSV(strings.NewReader(""), opts)
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("t,p,c\n2024-01-01 00:15,1,1\n2024-01-01 00:00,1,1\n"), opts)
	assert.ErrorIs(t, err, model.ErrMisalignedSeries)

	_, err = ReadCSV(strings.NewReader("t,p,c\n2024-01-01 00:00,abc,1\n"), opts)
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadCSV(strings.NewReader("t,p,c\nyesterday,1,1\n"), opts)
	assert.ErrorContains(t, err, "unrecognised timestamp")

	_, err = ReadCSV(strings.NewReader("t,p,c\n2024-01-01 00:00,,1\n"), opts)
	assert.ErrorContains(t, err, "empty value")

	_, err = ReadCSV(strings.NewReader("t,p,c\n"), CSVOptions{ProductionColumn: "p"})
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', SniffDelimiter([]byte("a;b;c\n1,5;2;3")))
	assert.Equal(t, '\t', SniffDelimiter([]byte("a\tb\tc")))
	assert.Equal(t, ',', SniffDelimiter([]byte("a,b,c")))
	assert.Equal(t, '|', SniffDelimiter([]byte("a|b")))
	assert.Equal(t, ',', SniffDelimiter([]byte("single")))
}

func TestColumns(t *testing.T) {
	cols, delim, err := Columns(strings.NewReader("\ufeffDate;PV ;Load\n1;2;3\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, ';', delim)
	assert.Equal(t, []string{"Date", "PV", "Load"}, cols)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("p,c\n1,2\n"), 0o644))

	ds, err := LoadCSV(path, CSVOptions{ProductionColumn: "p", ConsumptionColumn: "c"})
	require.NoError(t, err)
	assert.Len(t, ds.Consumption, 1)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), CSVOptions{ProductionColumn: "p", ConsumptionColumn: "c"})
	assert.Error(t, err)
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit(" kWh ")
	require.NoError(t, err)
	assert.Equal(t, UnitKWh, u)

	u, err = ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, UnitWh, u)

	_, err = ParseUnit("MWh")
	assert.Error(t, err)
}
