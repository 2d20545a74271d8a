package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-battery-sim/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_BatteryFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "batteries/home.yaml", `
battery:
  name: Home
  capacity_kwh: 10
  max_power_kw: 4
  efficiency: 0.95
  min_soc: 0.1
`)
	path := writeFile(t, dir, "config.yaml", `
battery_file: batteries/home.yaml
battery:
  efficiency: 0.9
  initial_soc: 0.5
input:
  path: data.csv
  production_column: pv
  consumption_column: load
  unit: kw
  step_hours: 0.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	b := cfg.Battery
	assert.Equal(t, "Home", b.Name)
	require.NotNil(t, b.InitialSOC)
	assert.InDelta(t, 0.5, *b.InitialSOC, 1e-12)

	m := b.ToModel(cfg.Input.StepHours)
	assert.NoError(t, m.Validate())
	assert.InDelta(t, 10, m.CapacityKWh, 1e-12)
	assert.InDelta(t, 0.9, m.Efficiency, 1e-12)
	assert.InDelta(t, 4, m.MaxChargeKW, 1e-12)
	assert.InDelta(t, 4, m.MaxDischargeKW, 1e-12)
	assert.InDelta(t, 0.1, m.MinSOC, 1e-12)
	assert.InDelta(t, 1, m.MaxSOC, 1e-12)
	assert.InDelta(t, 0.5, m.StepHours, 1e-12)
}

func TestLoad_ExplicitZeroOverridesPreset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "home.yaml", `
battery:
  capacity_kwh: 10
  max_power_kw: 4
  efficiency: 0.95
  min_soc: 0.2
`)
	path := writeFile(t, dir, "config.yaml", `
battery_file: home.yaml
battery:
  min_soc: 0
  max_charge_kw: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	m := cfg.Battery.ToModel(1)
	assert.InDelta(t, 0, m.MinSOC, 1e-12)
	assert.InDelta(t, 0, m.MaxChargeKW, 1e-12)
	assert.InDelta(t, 4, m.MaxDischargeKW, 1e-12)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "bad.yaml", `
battery:
  capacity_kwh: 0
  efficiency: 0.9
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	path = writeFile(t, dir, "unit.yaml", `
battery:
  capacity_kwh: 5
  efficiency: 0.9
input:
  unit: furlongs
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported unit")

	path = writeFile(t, dir, "missing.yaml", "battery_file: nope.yaml\n")
	_, err = Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_LoadDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "time;pv;load\n2024-06-21 10:00;2000;400\n2024-06-21 10:15;0;400\n")
	writeFile(t, dir, "data.json", `{"step_hours":1,"points":[{"production_wh":5,"consumption_wh":6}]}`)

	path := writeFile(t, dir, "config.yaml", `
battery:
  capacity_kwh: 5
  max_power_kw: 3
  efficiency: 0.9
input:
  path: data.csv
  time_column: time
  production_column: pv
  consumption_column: load
  unit: w
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	ds, err := cfg.LoadDataset()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, ds.StepHours, 1e-12)
	assert.InDelta(t, 500, ds.Production[0].Wh, 1e-9)

	cfg.Input.Path = "data.json"
	ds, err = cfg.LoadDataset()
	require.NoError(t, err)
	assert.InDelta(t, 1, ds.StepHours, 1e-12)
	assert.InDelta(t, 6, ds.Consumption[0].Wh, 1e-12)

	cfg.Input.Path = ""
	_, err = cfg.LoadDataset()
	assert.Error(t, err)
}

func TestInputConfig_CSVOptions(t *testing.T) {
	opts, err := InputConfig{Delimiter: "tab", Timezone: "Europe/Paris"}.CSVOptions()
	require.NoError(t, err)
	assert.Equal(t, '\t', opts.Delimiter)
	assert.Equal(t, "Europe/Paris", opts.Location.String())

	_, err = InputConfig{Delimiter: ";;"}.CSVOptions()
	assert.Error(t, err)

	_, err = InputConfig{Timezone: "Mars/Olympus"}.CSVOptions()
	assert.Error(t, err)
}

func TestMergeBattery(t *testing.T) {
	base := BatteryConfig{Name: "base", CapacityKWh: Float(10), Efficiency: Float(0.95), MinSOC: Float(0.1), MaxSOC: Float(0.9)}
	out := MergeBattery(base, BatteryConfig{CapacityKWh: Float(12), MaxSOC: Float(1)})
	assert.Equal(t, "base", out.Name)
	m := out.ToModel(1)
	assert.InDelta(t, 12, m.CapacityKWh, 1e-12)
	assert.InDelta(t, 0.95, m.Efficiency, 1e-12)
	assert.InDelta(t, 0.1, m.MinSOC, 1e-12)
	assert.InDelta(t, 1, m.MaxSOC, 1e-12)
	assert.Nil(t, out.InitialSOC)

	t.Run("explicit zero wins", func(t *testing.T) {
		preset := BatteryConfig{CapacityKWh: Float(5), MaxPowerKW: Float(3), Efficiency: Float(0.9), MinSOC: Float(0.1)}
		m := MergeBattery(preset, BatteryConfig{MinSOC: Float(0), MaxChargeKW: Float(0)}).WithDefaults().ToModel(1)
		assert.InDelta(t, 0, m.MinSOC, 1e-12)
		assert.InDelta(t, 0, m.MaxChargeKW, 1e-12)
		assert.InDelta(t, 3, m.MaxDischargeKW, 1e-12)
	})

	t.Run("power rating replaces directional limits", func(t *testing.T) {
		preset := BatteryConfig{CapacityKWh: Float(5), MaxChargeKW: Float(2), MaxDischargeKW: Float(2), Efficiency: Float(0.9)}
		m := MergeBattery(preset, BatteryConfig{MaxPowerKW: Float(5)}).WithDefaults().ToModel(1)
		assert.InDelta(t, 5, m.MaxChargeKW, 1e-12)
		assert.InDelta(t, 5, m.MaxDischargeKW, 1e-12)

		m = MergeBattery(preset, BatteryConfig{MaxPowerKW: Float(5), MaxChargeKW: Float(1)}).WithDefaults().ToModel(1)
		assert.InDelta(t, 1, m.MaxChargeKW, 1e-12)
		assert.InDelta(t, 5, m.MaxDischargeKW, 1e-12)
	})
}

func TestLoadServer(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "server.yaml", `
battery_dir: /srv/batteries
port: "7000"
max_upload_mb: 8
`)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_RESULT_TTL", "30m")

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/batteries", cfg.BatteryDir)
	assert.Equal(t, 30*time.Minute, cfg.ResultTTL)
	assert.Equal(t, int64(8), cfg.MaxUploadMB)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Port)
	assert.Equal(t, int64(32), cfg.MaxUploadMB)
	assert.Equal(t, 256, cfg.MaxResults)
	assert.Equal(t, time.Hour, cfg.ResultTTL)
	assert.False(t, cfg.Production())
}

func TestServerConfig_Validate(t *testing.T) {
	cfg := ServerConfig{ResultTTL: -time.Second}
	assert.Error(t, cfg.Validate())
	cfg = ServerConfig{MaxUploadMB: -1}
	assert.Error(t, cfg.Validate())
	cfg = ServerConfig{MaxResults: -1}
	assert.Error(t, cfg.Validate())
}
