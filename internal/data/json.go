package data

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"solar-battery-sim/internal/model"
)

// SeriesFile matches the JSON shape of a measurement export.
//
// Example:
//
//	{
//	  "step_hours": 0.25,
//	  "points": [
//	    {"time": "2024-06-21T10:00:00Z", "production_wh": 420, "consumption_wh": 130}
//	  ]
//	}
type SeriesFile struct {
	StepHours float64       `json:"step_hours"`
	Points    []SeriesPoint `json:"points"`
}

type SeriesPoint struct {
	Time          time.Time `json:"time"`
	ProductionWh  float64   `json:"production_wh"`
	ConsumptionWh float64   `json:"consumption_wh"`
}

func LoadSeriesJSON(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSeriesJSON(f)
}

func DecodeSeriesJSON(r io.Reader) (*Dataset, error) {
	var sf SeriesFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return nil, err
	}
	return sf.Dataset(), nil
}

// Dataset splits the points into the two series. A missing step_hours is
// inferred from the first two timestamps, as for CSV input.
func (sf SeriesFile) Dataset() *Dataset {
	ds := &Dataset{
		Production:  make(model.Series, len(sf.Points)),
		Consumption: make(model.Series, len(sf.Points)),
		StepHours:   sf.StepHours,
	}
	for i, p := range sf.Points {
		ds.Production[i] = model.Point{Time: p.Time, Wh: p.ProductionWh}
		ds.Consumption[i] = model.Point{Time: p.Time, Wh: p.ConsumptionWh}
	}
	if ds.StepHours == 0 {
		ds.StepHours = DefaultStepHours
		if len(sf.Points) >= 2 && !sf.Points[0].Time.IsZero() {
			ds.StepHours = sf.Points[1].Time.Sub(sf.Points[0].Time).Hours()
		}
	}
	return ds
}
