package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"solar-battery-sim/internal/analysis"
	"solar-battery-sim/internal/api/models"
	"solar-battery-sim/internal/config"
	"solar-battery-sim/internal/data"
	"solar-battery-sim/internal/metrics"
	"solar-battery-sim/internal/model"
	"solar-battery-sim/internal/simulation"
)

// SimulationHandler handles simulation-related requests
type SimulationHandler struct {
	batteries *BatteryHandler
	store     *data.ResultStore
	recorder  *metrics.Recorder
	log       zerolog.Logger

	// MaxUploadBytes bounds POST /simulate/upload bodies.
	MaxUploadBytes int64
	// Parallelism bounds concurrent runs of compare and sizing requests.
	Parallelism int
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(batteries *BatteryHandler, store *data.ResultStore, recorder *metrics.Recorder, log zerolog.Logger) *SimulationHandler {
	return &SimulationHandler{
		batteries:      batteries,
		store:          store,
		recorder:       recorder,
		log:            log,
		MaxUploadBytes: 32 << 20,
	}
}

// Simulate handles POST /api/v1/simulate
func (h *SimulationHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	battery, err := h.resolveBattery(req.Config, nil)
	if err != nil {
		respondClassified(c, err)
		return
	}
	cfg := battery.WithDefaults().ToModel(stepHours(req.Config.StepHours))
	production, consumption := buildSeries(req.Series, cfg)

	res, err := h.run("simulate", production, consumption, cfg)
	if err != nil {
		respondClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respond(cfg, res, req.Options.IncludeLedger))
}

// Upload handles POST /api/v1/simulate/upload (multipart CSV)
func (h *SimulationHandler) Upload(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	var form models.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		h.uploadError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.uploadError(c, fmt.Errorf("file: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.uploadError(c, err)
		return
	}
	raw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		h.uploadError(c, err)
		return
	}

	input := form.Input()
	opts, err := input.CSVOptions()
	if err != nil {
		badRequest(c, err)
		return
	}
	if form.ProductionColumn == "" || form.ConsumptionColumn == "" {
		// Let the client pick the columns.
		cols, delim, colErr := data.Columns(bytes.NewReader(raw), opts.Delimiter)
		if colErr != nil {
			respondError(c, http.StatusBadRequest, "INVALID_CSV", colErr, nil)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			errors.New("production_column and consumption_column are required"),
			map[string]interface{}{"columns": cols, "delimiter": string(delim)})
		return
	}

	ds, err := data.ReadCSV(bytes.NewReader(raw), opts)
	if err != nil {
		if errors.Is(err, model.ErrMisalignedSeries) || errors.Is(err, data.ErrColumnNotFound) {
			respondClassified(c, err)
		} else {
			respondError(c, http.StatusBadRequest, "INVALID_CSV", err, nil)
		}
		return
	}

	battery, err := h.resolveBattery(models.SimulationConfig{BatteryFile: form.BatteryFile, Battery: form.Battery()}, nil)
	if err != nil {
		respondClassified(c, err)
		return
	}
	cfg := battery.WithDefaults().ToModel(ds.StepHours)

	res, err := h.run("upload", ds.Production, ds.Consumption, cfg)
	if err != nil {
		respondClassified(c, err)
		return
	}
	h.log.Info().Str("file", fh.Filename).Int("steps", len(ds.Production)).Msg("simulated uploaded file")
	c.JSON(http.StatusOK, h.respond(cfg, res, form.IncludeLedger))
}

func (h *SimulationHandler) uploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err,
			map[string]interface{}{"limit_bytes": tooLarge.Limit})
		return
	}
	badRequest(c, err)
}

// Compare handles POST /api/v1/simulate/compare
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	base, err := h.resolveBattery(req.Config, nil)
	if err != nil {
		respondClassified(c, err)
		return
	}
	step := stepHours(req.Config.StepHours)
	configs := make([]model.BatteryConfig, len(req.Variations))
	names := make([]string, len(req.Variations))
	for i, v := range req.Variations {
		b, err := h.resolveBattery(v.Config, &base)
		if err != nil {
			respondClassified(c, fmt.Errorf("variation %d: %w", i, err))
			return
		}
		configs[i] = b.WithDefaults().ToModel(step)
		names[i] = v.Name
		if names[i] == "" {
			names[i] = b.Name
		}
		if names[i] == "" {
			names[i] = fmt.Sprintf("variation %d", i+1)
		}
	}
	production, consumption := buildSeries(req.Series, configs[0])

	start := time.Now()
	cands, err := analysis.Compare(c.Request.Context(), production, consumption, configs, h.Parallelism)
	h.observe("compare", err, len(production)*len(configs), start)
	if err != nil {
		respondClassified(c, err)
		return
	}

	window := seriesWindow(production, step)
	comparison := make([]models.ComparisonResult, len(cands))
	for i, cand := range cands {
		summary := models.NewSimulationSummary(cand.Metrics, specs(cand.Battery))
		summary.Steps = len(production)
		summary.StepHours = step
		summary.Window = window
		summary.FinalSOCPct = cand.FinalSOCPct
		comparison[i] = models.ComparisonResult{Name: names[i], Summary: summary}
	}
	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

// Sizing handles POST /api/v1/sizing
func (h *SimulationHandler) Sizing(c *gin.Context) {
	var req models.SizingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	battery, err := h.resolveBattery(req.Config, nil)
	if err != nil {
		respondClassified(c, err)
		return
	}
	step := stepHours(req.Config.StepHours)
	if battery.CapacityKWh == nil {
		// Only the capacities of the sweep matter.
		battery.CapacityKWh = config.Float(req.CapacitiesKWh[0])
	}
	base := battery.WithDefaults().ToModel(step)
	production, consumption := buildSeries(req.Series, base)

	params := analysis.SweepParams{
		CapacitiesKWh: req.CapacitiesKWh,
		PowersKW:      req.PowersKW,
		Parallelism:   h.Parallelism,
	}
	start := time.Now()
	cands, err := analysis.Sweep(c.Request.Context(), production, consumption, base, params)
	h.observe("sizing", err, len(production)*len(req.CapacitiesKWh)*max(len(req.PowersKW), 1), start)
	if err != nil {
		respondClassified(c, err)
		return
	}

	ranked := analysis.RankBySelfSufficiency(cands)
	if req.Limit > 0 && req.Limit < len(ranked) {
		ranked = ranked[:req.Limit]
	}
	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{
			Rank:                 r.Rank,
			Name:                 r.Battery.Name,
			CapacityKWh:          r.Battery.CapacityKWh,
			PowerKW:              r.Battery.MaxDischargeKW,
			SelfSufficiencyRate:  r.SelfSufficiencyRate,
			SelfConsumptionRate:  r.SelfConsumptionRate,
			GainRate:             r.GainRate,
			EnergyImportedWh:     r.EnergyImportedWh,
			EquivalentFullCycles: r.EquivalentFullCycles,
		}
	}
	c.JSON(http.StatusOK, models.SizingResponse{
		Potential: analysis.ComputePotential(production, consumption, step),
		Rankings:  rankings,
	})
}

// GetLedger handles GET /api/v1/simulations/:id/ledger
func (h *SimulationHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	run, ok := h.store.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("simulation %q not found or expired", id), nil)
		return
	}

	var q models.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	from, err := parseBound(q.Start)
	if err != nil {
		badRequest(c, fmt.Errorf("start: %w", err))
		return
	}
	to, err := parseBound(q.End)
	if err != nil {
		badRequest(c, fmt.Errorf("end: %w", err))
		return
	}
	rows := simulation.Window(run.Result.Ledger, from, to)

	switch strings.ToLower(q.Format) {
	case "", "json":
		c.JSON(http.StatusOK, models.LedgerResponse{
			ID:     run.ID,
			Count:  len(rows),
			Ledger: models.NewLedger(rows),
		})
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="simulation-%s.csv"`, run.ID))
		c.Status(http.StatusOK)
		if err := simulation.WriteLedger(c.Writer, rows); err != nil {
			h.log.Error().Err(err).Str("id", run.ID).Msg("failed to write ledger csv")
		}
	default:
		badRequest(c, fmt.Errorf("unsupported format %q (want json or csv)", q.Format))
	}
}

// Helper methods

// resolveBattery merges, in order: the fallback (or nothing), the preset named
// by sc.BatteryFile, and the explicit battery fields of sc. Defaults are not
// applied, so the result can serve as the fallback of a variation.
func (h *SimulationHandler) resolveBattery(sc models.SimulationConfig, fallback *config.BatteryConfig) (config.BatteryConfig, error) {
	var b config.BatteryConfig
	if fallback != nil {
		b = *fallback
	}
	if sc.BatteryFile != "" {
		preset, err := h.batteries.Load(sc.BatteryFile)
		if err != nil {
			return config.BatteryConfig{}, err
		}
		b = preset
	}
	return config.MergeBattery(b, sc.Battery), nil
}

func (h *SimulationHandler) run(kind string, production, consumption model.Series, cfg model.BatteryConfig) (*simulation.Result, error) {
	start := time.Now()
	res, err := simulation.Simulate(production, consumption, cfg)
	h.observe(kind, err, len(production), start)
	return res, err
}

func (h *SimulationHandler) observe(kind string, err error, steps int, start time.Time) {
	outcome := metrics.OutcomeOK
	if err != nil {
		_, _, outcome = classify(err)
	}
	h.recorder.ObserveRun(kind, outcome, steps, time.Since(start))
}

func (h *SimulationHandler) respond(cfg model.BatteryConfig, res *simulation.Result, includeLedger bool) models.SimulationResponse {
	run := h.store.Put(cfg, res)
	h.recorder.SetStored(h.store.Len())

	summary := models.NewSimulationSummary(res.Metrics, specs(cfg))
	summary.Steps = len(res.SOCTrajectoryPct)
	summary.StepHours = cfg.StepHours
	summary.FinalSOCPct = res.FinalSOCPct
	if n := len(res.Ledger); n > 0 && !res.Ledger[0].Time.IsZero() {
		summary.Window = &models.TimeWindow{
			Start: res.Ledger[0].Time,
			End:   res.Ledger[n-1].Time.Add(cfg.StepDuration()),
		}
	}

	resp := models.SimulationResponse{
		ID:               run.ID,
		Status:           "completed",
		ExpiresAt:        &run.ExpiresAt,
		Summary:          summary,
		SOCTrajectoryPct: res.SOCTrajectoryPct,
	}
	if includeLedger {
		resp.Ledger = models.NewLedger(res.Ledger)
	}
	return resp
}

func stepHours(v float64) float64 {
	if v == 0 {
		return data.DefaultStepHours
	}
	return v
}

func buildSeries(in models.SeriesInput, cfg model.BatteryConfig) (model.Series, model.Series) {
	var start time.Time
	if in.Start != nil {
		start = in.Start.UTC()
	}
	step := cfg.StepDuration()
	return model.SeriesFromValues(start, step, in.ProductionWh),
		model.SeriesFromValues(start, step, in.ConsumptionWh)
}

func seriesWindow(s model.Series, stepHours float64) *models.TimeWindow {
	if len(s) == 0 || s[0].Time.IsZero() {
		return nil
	}
	return &models.TimeWindow{
		Start: s[0].Time,
		End:   s[len(s)-1].Time.Add(time.Duration(stepHours * float64(time.Hour))),
	}
}

// parseBound accepts RFC 3339 timestamps or plain dates (midnight UTC).
func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
