package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"solar-battery-sim/internal/api/models"
	"solar-battery-sim/internal/config"
	"solar-battery-sim/internal/model"
)

// BatteryHandler serves the battery presets of one directory
type BatteryHandler struct {
	batteryDir string
	log        zerolog.Logger
}

// NewBatteryHandler creates a new battery handler
func NewBatteryHandler(dir string, log zerolog.Logger) *BatteryHandler {
	if dir == "" {
		dir = "./examples/batteries"
	}
	// Convert to absolute path for reliability
	if absDir, err := filepath.Abs(dir); err == nil {
		dir = absDir
	}
	log.Info().Str("battery_dir", dir).Msg("using battery directory")
	return &BatteryHandler{batteryDir: dir, log: log}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	batteries := []models.BatteryInfo{}

	entries, err := os.ReadDir(h.batteryDir)
	if err != nil {
		h.log.Warn().Err(err).Str("battery_dir", h.batteryDir).Msg("failed to read battery directory")
		c.JSON(http.StatusOK, gin.H{"batteries": batteries})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(h.batteryDir, entry.Name())
		b, err := config.LoadBatteryFile(path)
		if err != nil {
			h.log.Warn().Err(err).Str("file", path).Msg("skipping invalid battery file")
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		name := b.Name
		if name == "" {
			name = id
		}
		batteries = append(batteries, models.BatteryInfo{
			ID:    id,
			Name:  name,
			File:  entry.Name(),
			Specs: specs(b.WithDefaults().ToModel(0)),
		})
	}
	sort.Slice(batteries, func(i, j int) bool { return batteries[i].ID < batteries[j].ID })

	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}

// Load reads the preset with the given id (file name with or without the
// .yaml extension). Ids cannot leave the battery directory.
func (h *BatteryHandler) Load(id string) (config.BatteryConfig, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return config.BatteryConfig{}, fmt.Errorf("%w: invalid battery preset %q", model.ErrInvalidConfig, id)
	}
	candidates := []string{id}
	if !isYAML(id) {
		candidates = []string{id + ".yaml", id + ".yml"}
	}
	for _, name := range candidates {
		b, err := config.LoadBatteryFile(filepath.Join(h.batteryDir, name))
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return config.BatteryConfig{}, fmt.Errorf("%w: battery preset %q: %v", model.ErrInvalidConfig, id, err)
		}
	}
	return config.BatteryConfig{}, fmt.Errorf("%w: battery preset %q not found", model.ErrInvalidConfig, id)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func specs(b model.BatteryConfig) models.BatterySpecs {
	return models.BatterySpecs{
		Name:           b.Name,
		CapacityKWh:    b.CapacityKWh,
		MaxChargeKW:    b.MaxChargeKW,
		MaxDischargeKW: b.MaxDischargeKW,
		Efficiency:     b.Efficiency,
		MinSOC:         b.MinSOC,
		MaxSOC:         b.MaxSOC,
		InitialSOC:     b.InitialSOC,
	}
}
