package fusion

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/modesense/tmd-backend-go/internal/models"
)

// Config holds the fusion thresholds and the window geometry used to map a
// prediction's window index back onto its sample range. All values are fixed
// at construction; the engine keeps no other state.
type Config struct {
	SpatialThreshold  float64 // meters, default 50
	TemporalThreshold float64 // seconds, default 300
	ConfidenceBoost   float64 // added on any transit match, default 0.2
	WindowSize        int
	WindowStep        int
	Workers           int // per-window fusion parallelism, default NumCPU
}

// Engine arbitrates between sensor-based predictions and transit vehicle
// evidence, window by window.
type Engine struct {
	cfg             Config
	characteristics map[string]ModeCharacteristics
	log             *logrus.Logger
}

// NewEngine validates the configuration and builds an engine with the
// default mode-characteristics table.
func NewEngine(cfg Config, log *logrus.Logger) (*Engine, error) {
	if cfg.SpatialThreshold <= 0 {
		cfg.SpatialThreshold = 50.0
	}
	if cfg.TemporalThreshold <= 0 {
		cfg.TemporalThreshold = 300.0
	}
	if cfg.ConfidenceBoost <= 0 {
		cfg.ConfidenceBoost = 0.2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("fusion: window size must be positive, got %d", cfg.WindowSize)
	}
	if cfg.WindowStep <= 0 {
		return nil, fmt.Errorf("fusion: window step must be positive, got %d", cfg.WindowStep)
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		cfg:             cfg,
		characteristics: DefaultCharacteristics(),
		log:             log,
	}, nil
}

// Infer produces one result per prediction, combining each with the transit
// vehicle evidence and the mode's plausibility envelope. Windows are fused
// concurrently; the output preserves prediction order, and identical inputs
// always produce identical results.
func (e *Engine) Infer(samples []models.SensorSample, predictions []models.ModePrediction, vehicles []models.VehiclePosition) []models.InferenceResult {
	if len(predictions) == 0 {
		return nil
	}

	results := make([]models.InferenceResult, len(predictions))

	workers := e.cfg.Workers
	if workers > len(predictions) {
		workers = len(predictions)
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.inferWindow(samples, predictions[i], vehicles)
			}
		}()
	}
	for i := range predictions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// inferWindow runs the fusion steps for a single window.
func (e *Engine) inferWindow(samples []models.SensorSample, prediction models.ModePrediction, vehicles []models.VehiclePosition) models.InferenceResult {
	window := e.windowSamples(samples, prediction.WindowIndex)

	// Seed with the sensor prediction verbatim.
	result := models.InferenceResult{
		WindowIndex:  prediction.WindowIndex,
		Mode:         prediction.Mode,
		Confidence:   clamp01(prediction.Confidence),
		Distribution: copyDistribution(prediction.Distribution),
		Evidence:     models.Evidence{SensorBased: true},
	}

	// Transit evidence is only consulted for transit-capable modes.
	if models.TransitModes[result.Mode] && len(vehicles) > 0 {
		matched := e.matchVehicles(gpsPoints(window), vehicles)
		if len(matched) > 0 {
			result.Evidence.TransitMatched = true
			result.Evidence.MatchedVehicles = matched
			result.Confidence = clamp01(result.Confidence + e.cfg.ConfidenceBoost)

			impliedMode := transitImpliedMode(matched)
			if impliedMode != "" && impliedMode != result.Mode {
				if transitConf := transitConfidence(matched); transitConf > result.Confidence {
					e.log.WithFields(logrus.Fields{
						"window":     prediction.WindowIndex,
						"sensor":     result.Mode,
						"transit":    impliedMode,
						"confidence": transitConf,
					}).Debug("transit evidence overrides sensor mode")
					result.Mode = impliedMode
					result.Confidence = clamp01(transitConf)
				}
			}
		}
	}

	e.validatePlausibility(&result, window)
	return result
}

// windowSamples maps a window index onto its sample slice. Heuristic
// predictions cover the whole batch with index 0; any index whose window
// falls outside the batch also falls back to the full batch.
func (e *Engine) windowSamples(samples []models.SensorSample, index int) []models.SensorSample {
	start := index * e.cfg.WindowStep
	end := start + e.cfg.WindowSize
	if index < 0 || start >= len(samples) || end > len(samples) {
		return samples
	}
	return samples[start:end]
}

func copyDistribution(distribution map[string]float64) map[string]float64 {
	if distribution == nil {
		return nil
	}
	out := make(map[string]float64, len(distribution))
	for k, v := range distribution {
		out[k] = v
	}
	return out
}
