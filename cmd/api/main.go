package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"solar-battery-sim/internal/api"
	"solar-battery-sim/internal/config"
	"solar-battery-sim/internal/data"
	"solar-battery-sim/internal/logging"
	"solar-battery-sim/internal/metrics"
)

func main() {
	log := logging.New("api")

	// API_CONFIG optionally points at a YAML file; other API_* variables override it.
	cfg, err := config.LoadServer(os.Getenv("API_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load server config")
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := metrics.NewRecorder(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}
	store := data.NewResultStore(cfg.ResultTTL, cfg.MaxResults)
	go func() {
		every := cfg.ResultTTL / 4
		if every < time.Minute {
			every = time.Minute
		}
		store.Run(ctx, every)
	}()

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Store:    store,
		Recorder: recorder,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	log.Info().Msg("server stopped")
}
