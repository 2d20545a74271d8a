// Package api wires the HTTP handlers of the simulation service.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"solar-battery-sim/internal/api/handlers"
	"solar-battery-sim/internal/api/middleware"
	"solar-battery-sim/internal/config"
	"solar-battery-sim/internal/data"
	"solar-battery-sim/internal/metrics"
)

// Deps are the shared services behind the router.
type Deps struct {
	Config   *config.ServerConfig
	Store    *data.ResultStore
	Recorder *metrics.Recorder
	Logger   zerolog.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.ServerConfig{}
		cfg.SetDefaults()
	}
	if d.Store == nil {
		d.Store = data.NewResultStore(cfg.ResultTTL, cfg.MaxResults)
	}

	router := gin.New()
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.ErrorHandler(d.Logger))

	batteryHandler := handlers.NewBatteryHandler(cfg.BatteryDir, d.Logger)
	simulationHandler := handlers.NewSimulationHandler(batteryHandler, d.Store, d.Recorder, d.Logger)
	simulationHandler.MaxUploadBytes = cfg.MaxUploadMB << 20

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stored_results": d.Store.Len()})
	})
	router.GET("/metrics", gin.WrapH(d.Recorder.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/simulate", simulationHandler.Simulate)
		v1.POST("/simulate/upload", simulationHandler.Upload)
		v1.POST("/simulate/compare", simulationHandler.Compare)
		v1.POST("/sizing", simulationHandler.Sizing)
		v1.GET("/simulations/:id/ledger", simulationHandler.GetLedger)

		v1.GET("/batteries", batteryHandler.ListBatteries)
	}

	mountStatic(router, cfg.StaticDir, d.Logger)
	return router
}

// mountStatic serves the single page app from dir, if it exists.
func mountStatic(router *gin.Engine, dir string, log zerolog.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Info().Str("static_dir", dir).Msg("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	index := filepath.Join(dir, "index.html")
	// Serve index.html for all non-API routes (SPA routing)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(index)
	})
	log.Info().Str("static_dir", dir).Msg("serving static files")
}
