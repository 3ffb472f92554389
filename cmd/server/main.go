package main

import (
	"github.com/sirupsen/logrus"

	"github.com/modesense/tmd-backend-go/internal/api"
	"github.com/modesense/tmd-backend-go/internal/config"
	"github.com/modesense/tmd-backend-go/internal/database"
	"github.com/modesense/tmd-backend-go/internal/features"
	"github.com/modesense/tmd-backend-go/internal/fusion"
	"github.com/modesense/tmd-backend-go/internal/handler"
	"github.com/modesense/tmd-backend-go/internal/metrics"
	"github.com/modesense/tmd-backend-go/internal/predictor"
	"github.com/modesense/tmd-backend-go/internal/repository"
	"github.com/modesense/tmd-backend-go/internal/service"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}, log); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer database.Close()

	extractor, err := features.NewExtractor(features.Config{
		WindowSize: cfg.WindowSize,
		Overlap:    cfg.Overlap,
	})
	if err != nil {
		log.WithError(err).Fatal("invalid window configuration")
	}

	engine, err := fusion.NewEngine(fusion.Config{
		SpatialThreshold:  cfg.SpatialThresholdMeters,
		TemporalThreshold: cfg.TemporalThresholdSecs,
		ConfidenceBoost:   cfg.ConfidenceBoost,
		WindowSize:        extractor.WindowSize(),
		WindowStep:        extractor.Step(),
		Workers:           cfg.FusionWorkers,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("invalid fusion configuration")
	}

	collector := metrics.NewCollector()
	remote := predictor.NewRemoteClient(cfg.PredictorURL, extractor.Schema(), cfg.PredictorTimeout, log)

	vehicleRepo := repository.NewVehicleRepository(database.GetDB())
	vehicleService := service.NewVehicleService(vehicleRepo, collector, log)
	inferenceService := service.NewInferenceService(extractor, remote, vehicleRepo, engine, collector, log)

	router := api.SetupRouter(cfg,
		handler.NewInferenceHandler(inferenceService),
		handler.NewVehicleHandler(vehicleService),
		collector, log)

	log.WithFields(logrus.Fields{
		"port":   cfg.Port,
		"schema": extractor.Schema().Version(),
	}).Info("server starting")
	if err := router.Run(cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
