package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"solar-battery-sim/internal/data"
	"solar-battery-sim/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML) of one simulation run.
type Config struct {
	// Optional: load battery parameters from a separate YAML (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string        `yaml:"battery_file"`
	Battery     BatteryConfig `yaml:"battery"`
	Input       InputConfig   `yaml:"input"`
	Output      OutputConfig  `yaml:"output"`

	// dir is the directory of the config file, used to resolve relative paths.
	dir string
}

// BatteryConfig is a battery as written in YAML or JSON. Numeric fields are
// pointers so that an explicit 0 survives merging onto a preset.
type BatteryConfig struct {
	Name        string   `yaml:"name" json:"name,omitempty"`
	CapacityKWh *float64 `yaml:"capacity_kwh" json:"capacity_kwh,omitempty"`
	// MaxPowerKW sets both charge and discharge limits when those are not given.
	MaxPowerKW     *float64 `yaml:"max_power_kw" json:"max_power_kw,omitempty"`
	MaxChargeKW    *float64 `yaml:"max_charge_kw" json:"max_charge_kw,omitempty"`
	MaxDischargeKW *float64 `yaml:"max_discharge_kw" json:"max_discharge_kw,omitempty"`
	Efficiency     *float64 `yaml:"efficiency" json:"efficiency,omitempty"`
	MinSOC         *float64 `yaml:"min_soc" json:"min_soc,omitempty"`
	MaxSOC         *float64 `yaml:"max_soc" json:"max_soc,omitempty"`
	InitialSOC     *float64 `yaml:"initial_soc" json:"initial_soc,omitempty"`
}

type InputConfig struct {
	Path string `yaml:"path"`
	// Format is "csv" or "json"; derived from the file extension when empty.
	Format            string  `yaml:"format"`
	Delimiter         string  `yaml:"delimiter"`
	TimeColumn        string  `yaml:"time_column"`
	ProductionColumn  string  `yaml:"production_column"`
	ConsumptionColumn string  `yaml:"consumption_column"`
	Unit              string  `yaml:"unit"`
	StepHours         float64 `yaml:"step_hours"`
	TimeLayout        string  `yaml:"time_layout"`
	Timezone          string  `yaml:"timezone"`
}

type OutputConfig struct {
	Path string `yaml:"path"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.Battery = c.Battery.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)
	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		loaded, err := LoadBatteryFile(c.Resolve(c.BatteryFile))
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

// Resolve interprets a relative path as relative to the config file directory,
// falling back to the path as given (relative to cwd) if that doesn't exist.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	cand := filepath.Join(c.dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	step := c.Input.StepHours
	if step == 0 {
		step = data.DefaultStepHours
	}
	if err := c.Battery.ToModel(step).Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if _, err := c.Input.CSVOptions(); err != nil {
		return fmt.Errorf("input config invalid: %w", err)
	}
	switch strings.ToLower(c.Input.Format) {
	case "", "csv", "json":
	default:
		return fmt.Errorf("input config invalid: unsupported format %q", c.Input.Format)
	}
	return nil
}

// LoadDataset reads the configured input file.
func (c *Config) LoadDataset() (*data.Dataset, error) {
	if c.Input.Path == "" {
		return nil, errors.New("input.path is required")
	}
	path := c.Resolve(c.Input.Path)
	format := strings.ToLower(c.Input.Format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	var (
		ds  *data.Dataset
		err error
	)
	if format == "json" {
		ds, err = data.LoadSeriesJSON(path)
	} else {
		opts, optErr := c.Input.CSVOptions()
		if optErr != nil {
			return nil, optErr
		}
		ds, err = data.LoadCSV(path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if c.Input.StepHours > 0 {
		ds.StepHours = c.Input.StepHours
	}
	return ds, nil
}

func (in InputConfig) CSVOptions() (data.CSVOptions, error) {
	unit, err := data.ParseUnit(in.Unit)
	if err != nil {
		return data.CSVOptions{}, err
	}
	opts := data.CSVOptions{
		TimeColumn:        in.TimeColumn,
		ProductionColumn:  in.ProductionColumn,
		ConsumptionColumn: in.ConsumptionColumn,
		Unit:              unit,
		StepHours:         in.StepHours,
		TimeLayout:        in.TimeLayout,
	}
	if in.Delimiter != "" {
		d := in.Delimiter
		if d == `\t` || strings.EqualFold(d, "tab") {
			d = "\t"
		}
		r, size := utf8.DecodeRuneInString(d)
		if size != len(d) {
			return data.CSVOptions{}, fmt.Errorf("delimiter must be a single character, got %q", in.Delimiter)
		}
		opts.Delimiter = r
	}
	if in.Timezone != "" {
		loc, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return data.CSVOptions{}, err
		}
		opts.Location = loc
	}
	return opts, nil
}

// WithDefaults fills the fields that have an obvious default: a 0..100% SOC
// window, and a single power rating for both directions.
func (b BatteryConfig) WithDefaults() BatteryConfig {
	if b.MinSOC == nil {
		b.MinSOC = Float(0)
	}
	if b.MaxSOC == nil {
		b.MaxSOC = Float(1)
	}
	if b.MaxChargeKW == nil {
		b.MaxChargeKW = b.MaxPowerKW
	}
	if b.MaxDischargeKW == nil {
		b.MaxDischargeKW = b.MaxPowerKW
	}
	return b
}

// ToModel converts to the engine's battery. Unset fields become 0 and are
// then reported by model.BatteryConfig.Validate.
func (b BatteryConfig) ToModel(stepHours float64) model.BatteryConfig {
	return model.BatteryConfig{
		Name:           b.Name,
		CapacityKWh:    value(b.CapacityKWh),
		MaxChargeKW:    value(b.MaxChargeKW),
		MaxDischargeKW: value(b.MaxDischargeKW),
		Efficiency:     value(b.Efficiency),
		MinSOC:         value(b.MinSOC),
		MaxSOC:         value(b.MaxSOC),
		StepHours:      stepHours,
		InitialSOC:     b.InitialSOC,
	}
}

// Float returns a pointer to v, for building a BatteryConfig in code.
func Float(v float64) *float64 { return &v }

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset (a YAML file with a top-level battery key).
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, err
	}
	return w.Battery, nil
}

// MergeBattery overlays the fields set in override onto base. This is used
// when loading a battery file and then applying overrides from the request.
// An overriding max_power_kw replaces the per-direction limits of base unless
// override sets them too.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.MaxPowerKW != nil {
		out.MaxPowerKW = override.MaxPowerKW
		out.MaxChargeKW = nil
		out.MaxDischargeKW = nil
	}
	overlay(&out.CapacityKWh, override.CapacityKWh)
	overlay(&out.MaxChargeKW, override.MaxChargeKW)
	overlay(&out.MaxDischargeKW, override.MaxDischargeKW)
	overlay(&out.Efficiency, override.Efficiency)
	overlay(&out.MinSOC, override.MinSOC)
	overlay(&out.MaxSOC, override.MaxSOC)
	overlay(&out.InitialSOC, override.InitialSOC)
	return out
}

func overlay(dst **float64, src *float64) {
	if src != nil {
		*dst = src
	}
}
