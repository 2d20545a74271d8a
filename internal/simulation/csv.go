package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"time",
	"production_wh",
	"consumption_wh",
	"action",
	"charged_wh",
	"stored_wh",
	"drawn_wh",
	"delivered_wh",
	"imported_wh",
	"exported_wh",
	"self_consumed_wh",
	"soc_start_pct",
	"soc_end_pct",
	"soc_wh",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			fmtFloat(r.ProductionWh),
			fmtFloat(r.ConsumptionWh),
			string(r.Action),
			fmtFloat(r.ChargedWh),
			fmtFloat(r.StoredWh),
			fmtFloat(r.DrawnWh),
			fmtFloat(r.DeliveredWh),
			fmtFloat(r.ImportedWh),
			fmtFloat(r.ExportedWh),
			fmtFloat(r.SelfConsumedWh),
			fmtFloat(r.SOCStartPct),
			fmtFloat(r.SOCEndPct),
			fmtFloat(r.SOCWh),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
