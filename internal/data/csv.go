package data

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"solar-battery-sim/internal/model"
)

// DefaultStepHours is used when neither the caller nor the timestamps give a step.
const DefaultStepHours = 0.25

var ErrColumnNotFound = errors.New("column not found")

// timeLayouts are tried in order until one parses the first timestamp; that
// layout is then used for the whole file.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
}

// CSVOptions selects and interprets the columns of a measurement file.
type CSVOptions struct {
	// Delimiter is sniffed from the header line when zero.
	Delimiter rune
	// TimeColumn is optional; without it the series carry no timestamps.
	TimeColumn        string
	ProductionColumn  string
	ConsumptionColumn string
	Unit              Unit
	// StepHours is inferred from the first two timestamps when zero.
	StepHours  float64
	TimeLayout string
	Location   *time.Location
}

// Dataset is a pair of aligned series ready for simulation.
type Dataset struct {
	Production  model.Series
	Consumption model.Series
	StepHours   float64
}

func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV parses a measurement file into a Dataset in Wh per step.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	if opts.ProductionColumn == "" || opts.ConsumptionColumn == "" {
		return nil, errors.New("production and consumption columns are required")
	}
	if opts.Unit == "" {
		opts.Unit = UnitWh
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	br := bufio.NewReader(r)
	if opts.Delimiter == 0 {
		head, err := br.Peek(4096)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, err
		}
		opts.Delimiter = SniffDelimiter(head)
	}

	reader := csv.NewReader(br)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	headerMap := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	prodIdx, err := column(headerMap, headers, opts.ProductionColumn)
	if err != nil {
		return nil, err
	}
	consIdx, err := column(headerMap, headers, opts.ConsumptionColumn)
	if err != nil {
		return nil, err
	}
	timeIdx := -1
	if opts.TimeColumn != "" {
		if timeIdx, err = column(headerMap, headers, opts.TimeColumn); err != nil {
			return nil, err
		}
	}

	decimalComma := opts.Delimiter != ','
	layout := opts.TimeLayout
	var (
		times      []time.Time
		prod, cons []float64
	)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		p, err := cell(record, prodIdx, decimalComma)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, opts.ProductionColumn, err)
		}
		c, err := cell(record, consIdx, decimalComma)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, opts.ConsumptionColumn, err)
		}

		if timeIdx >= 0 {
			if timeIdx >= len(record) {
				return nil, fmt.Errorf("line %d: missing time value", line)
			}
			raw := strings.TrimSpace(record[timeIdx])
			if layout == "" {
				if layout, err = detectLayout(raw, opts.Location); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			}
			ts, err := time.ParseInLocation(layout, raw, opts.Location)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			ts = ts.UTC()
			if n := len(times); n > 0 && !ts.After(times[n-1]) {
				return nil, fmt.Errorf("%w: line %d: timestamp %s is not after %s", model.ErrMisalignedSeries, line, ts.Format(time.RFC3339), times[n-1].Format(time.RFC3339))
			}
			times = append(times, ts)
		}

		prod = append(prod, p)
		cons = append(cons, c)
	}

	stepHours := opts.StepHours
	if stepHours == 0 {
		stepHours = DefaultStepHours
		if len(times) >= 2 {
			stepHours = times[1].Sub(times[0]).Hours()
		}
	}

	ds := &Dataset{
		Production:  make(model.Series, len(prod)),
		Consumption: make(model.Series, len(cons)),
		StepHours:   stepHours,
	}
	for i := range prod {
		var ts time.Time
		if times != nil {
			ts = times[i]
		}
		ds.Production[i] = model.Point{Time: ts, Wh: opts.Unit.ToWhPerStep(prod[i], stepHours)}
		ds.Consumption[i] = model.Point{Time: ts, Wh: opts.Unit.ToWhPerStep(cons[i], stepHours)}
	}
	return ds, nil
}

// SniffDelimiter picks the most frequent of , ; tab | on the first line.
func SniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(head, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// Columns returns the header names of a CSV file, for column pickers.
func Columns(r io.Reader, delimiter rune) ([]string, rune, error) {
	br := bufio.NewReader(r)
	if delimiter == 0 {
		head, err := br.Peek(4096)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, 0, err
		}
		delimiter = SniffDelimiter(head)
	}
	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	headers, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}
	return headers, delimiter, nil
}

func column(headerMap map[string]int, headers []string, name string) (int, error) {
	idx, ok := headerMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q (have %s)", ErrColumnNotFound, name, strings.Join(headers, ", "))
	}
	return idx, nil
}

func cell(record []string, idx int, decimalComma bool) (float64, error) {
	if idx >= len(record) {
		return 0, errors.New("missing value")
	}
	s := strings.TrimSpace(record[idx])
	if s == "" {
		return 0, errors.New("empty value")
	}
	if decimalComma {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

func detectLayout(raw string, loc *time.Location) (string, error) {
	for _, l := range timeLayouts {
		if _, err := time.ParseInLocation(l, raw, loc); err == nil {
			return l, nil
		}
	}
	return "", fmt.Errorf("unrecognised timestamp %q", raw)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
