package simulation

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayLedger(t *testing.T) []LedgerRow {
	t.Helper()
	cfg := defaultConfig
	prod := make([]float64, 96)
	cons := make([]float64, 96)
	for i := range prod {
		if i >= 32 && i < 72 {
			prod[i] = 600
		}
		cons[i] = 150
	}
	res, err := Simulate(series(cfg, prod...), series(cfg, cons...), cfg)
	require.NoError(t, err)
	return res.Ledger
}

func TestWindow(t *testing.T) {
	ledger := dayLedger(t)

	assert.Len(t, Window(ledger, time.Time{}, time.Time{}), 96)

	morning := Window(ledger, t0.Add(6*time.Hour), t0.Add(12*time.Hour))
	require.Len(t, morning, 24)
	assert.Equal(t, 24, morning[0].Index)
	assert.Equal(t, 47, morning[23].Index)

	assert.Len(t, Window(ledger, t0.Add(23*time.Hour), time.Time{}), 4)
	assert.Len(t, Window(ledger, time.Time{}, t0.Add(time.Hour)), 4)
	assert.Empty(t, Window(ledger, t0.Add(48*time.Hour), time.Time{}))
}

func TestWriteLedger(t *testing.T) {
	ledger := dayLedger(t)

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, ledger[30:34]))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, ledgerHeader, records[0])
	assert.Equal(t, "30", records[1][0])
	assert.Equal(t, "2024-06-21T07:30:00Z", records[1][1])
	assert.Equal(t, "IDLE", records[1][4])
	assert.Equal(t, "CHARGING", records[3][4])
	assert.Equal(t, "450.000000", records[3][5])
}

func TestWriteLedgerCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, dayLedger(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 97, bytes.Count(raw, []byte("\n")))
}
