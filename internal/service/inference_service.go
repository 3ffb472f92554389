package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/modesense/tmd-backend-go/internal/features"
	"github.com/modesense/tmd-backend-go/internal/fusion"
	"github.com/modesense/tmd-backend-go/internal/metrics"
	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/predictor"
	"github.com/modesense/tmd-backend-go/internal/spatial"
)

// VehicleProvider supplies recent transit vehicle observations around a
// point. The repository implements it; tests substitute fakes.
type VehicleProvider interface {
	Nearby(ctx context.Context, q models.VehicleQuery, now int64) ([]models.VehiclePosition, error)
}

// Defaults for the transit lookup around the trip's GPS centroid.
const (
	DefaultVehicleRadiusMeters = 1000.0
	DefaultVehicleWindowSecs   = 300

	// A slow transit store must not stall inference; past this the request
	// degrades to sensor-only.
	vehicleLookupTimeout = 2 * time.Second
)

// InferenceService orchestrates the full pipeline: feature extraction, model
// prediction (or the heuristic fallback), transit lookup and fusion.
type InferenceService struct {
	extractor *features.Extractor
	predictor predictor.ModePredictor
	vehicles  VehicleProvider
	engine    *fusion.Engine
	collector *metrics.Collector
	log       *logrus.Logger

	vehicleRadius float64
	vehicleWindow int64

	// now is the clock for the transit time window, overridable in tests.
	now func() int64
}

// NewInferenceService wires the pipeline stages together. vehicles may be
// nil, in which case inference runs sensor-only.
func NewInferenceService(
	extractor *features.Extractor,
	pred predictor.ModePredictor,
	vehicles VehicleProvider,
	engine *fusion.Engine,
	collector *metrics.Collector,
	log *logrus.Logger,
) *InferenceService {
	return &InferenceService{
		extractor:     extractor,
		predictor:     pred,
		vehicles:      vehicles,
		engine:        engine,
		collector:     collector,
		log:           log,
		vehicleRadius: DefaultVehicleRadiusMeters,
		vehicleWindow: DefaultVehicleWindowSecs,
		now:           func() int64 { return time.Now().Unix() },
	}
}

// Infer runs the pipeline over one sensor batch.
func (s *InferenceService) Infer(ctx context.Context, req models.InferenceRequest) (*models.InferenceResponse, error) {
	start := time.Now()
	s.collector.InferenceRequests.Inc()

	// A malformed sample degrades its windows instead of failing the batch:
	// the broken half coordinate pair is dropped and every window covering
	// the sample is flagged on its result.
	samples := req.SensorData
	malformed := make(map[int]bool)
	for i := range samples {
		if err := samples[i].Validate(); err != nil {
			s.log.WithError(err).Warn("degrading malformed sample")
			malformed[i] = true
			samples[i].Latitude = nil
			samples[i].Longitude = nil
		}
	}

	predictions, fallback, err := s.predict(ctx, samples)
	if err != nil {
		s.collector.InferenceErrors.Inc()
		return nil, err
	}

	response := &models.InferenceResponse{RequestID: uuid.NewString()}
	if len(predictions) == 0 {
		// Not enough samples for a window or the heuristic; an empty
		// result set is the contract, not an error.
		response.Summary = models.Summarize(nil)
		return response, nil
	}

	vehicles := s.nearbyVehicles(ctx, samples)
	results := s.engine.Infer(samples, predictions, vehicles)
	if fallback {
		for i := range results {
			results[i].Evidence.Flags = append(results[i].Evidence.Flags, models.FlagHeuristicFallback)
		}
	}
	s.flagMalformedWindows(results, malformed, len(samples))

	s.record(results)
	response.Results = results
	response.Summary = models.Summarize(results)
	s.collector.InferenceDuration.Observe(time.Since(start).Seconds())
	return response, nil
}

// predict asks the model for per-window predictions, falling back to the
// speed heuristic when no trained model is available.
func (s *InferenceService) predict(ctx context.Context, samples []models.SensorSample) ([]models.ModePrediction, bool, error) {
	vectors := s.extractor.Extract(samples)
	if len(vectors) == 0 {
		return nil, false, nil
	}

	predStart := time.Now()
	predictions, err := s.predictor.Predict(ctx, vectors)
	s.collector.PredictorDuration.Observe(time.Since(predStart).Seconds())
	if err == nil {
		return predictions, false, nil
	}
	if !errors.Is(err, predictor.ErrNotReady) {
		return nil, false, fmt.Errorf("model prediction failed: %w", err)
	}

	s.log.Info("model not trained, using speed heuristic")
	s.collector.HeuristicFallbacks.Inc()
	return fusion.SpeedHeuristic(samples), true, nil
}

// nearbyVehicles queries the transit store around the batch's GPS centroid.
// Lookup failures degrade to sensor-only inference rather than failing the
// request.
func (s *InferenceService) nearbyVehicles(ctx context.Context, samples []models.SensorSample) []models.VehiclePosition {
	if s.vehicles == nil {
		return nil
	}

	var lats, lons []float64
	for i := range samples {
		if samples[i].HasGPS() {
			lats = append(lats, *samples[i].Latitude)
			lons = append(lons, *samples[i].Longitude)
		}
	}
	if len(lats) == 0 {
		return nil
	}

	lat, lon := spatial.Centroid(lats, lons)
	ctx, cancel := context.WithTimeout(ctx, vehicleLookupTimeout)
	defer cancel()
	vehicles, err := s.vehicles.Nearby(ctx, models.VehicleQuery{
		CenterLat:    lat,
		CenterLon:    lon,
		RadiusMeters: s.vehicleRadius,
		WindowSecs:   s.vehicleWindow,
	}, s.now())
	if err != nil {
		s.log.WithError(err).Warn("transit lookup failed, continuing sensor-only")
		return nil
	}
	return vehicles
}

// flagMalformedWindows marks every result whose sample range covers a
// degraded sample. A result whose window index maps outside the batch (the
// heuristic path) covers the whole batch.
func (s *InferenceService) flagMalformedWindows(results []models.InferenceResult, malformed map[int]bool, n int) {
	if len(malformed) == 0 {
		return
	}
	for i := range results {
		start, end, ok := s.extractor.WindowBounds(results[i].WindowIndex, n)
		if !ok {
			start, end = 0, n
		}
		for j := start; j < end; j++ {
			if malformed[j] {
				results[i].Evidence.Flags = append(results[i].Evidence.Flags, models.FlagMalformedSample)
				break
			}
		}
	}
}

func (s *InferenceService) record(results []models.InferenceResult) {
	for i := range results {
		s.collector.WindowsProcessed.Inc()
		s.collector.ModeDecisions.WithLabelValues(results[i].Mode).Inc()
		if results[i].Evidence.TransitMatched {
			s.collector.TransitMatches.Inc()
		}
	}
}

// ModelStatus combines the remote model's state with the feature schema the
// service extracts against.
type ModelStatus struct {
	SchemaVersion string               `json:"schema_version"`
	FeatureCount  int                  `json:"feature_count"`
	WindowSize    int                  `json:"window_size"`
	WindowStep    int                  `json:"window_step"`
	Model         *predictor.ModelInfo `json:"model,omitempty"`
	ModelError    string               `json:"model_error,omitempty"`
}

// ModelInfo reports the pipeline's schema and the remote model's state. A
// failed model round-trip is reported in-band so the endpoint stays useful
// when the model service is down.
func (s *InferenceService) ModelInfo(ctx context.Context) *ModelStatus {
	status := &ModelStatus{
		SchemaVersion: s.extractor.Schema().Version(),
		FeatureCount:  s.extractor.Schema().Len(),
		WindowSize:    s.extractor.WindowSize(),
		WindowStep:    s.extractor.Step(),
	}

	info, err := s.predictor.Info(ctx)
	if err != nil {
		status.ModelError = err.Error()
		return status
	}
	status.Model = info
	return status
}
