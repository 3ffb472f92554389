package fusion

import (
	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/stats"
)

// Plausibility penalties and the envelope-violation thresholds they key on.
const (
	speedMismatchPenalty = 0.8
	accelPatternPenalty  = 0.9

	smoothVarianceMax    = 2.0 // a "smooth" mode should vibrate less than this
	irregularVarianceMin = 0.5 // an "irregular" mode should vibrate more than this
)

// validatePlausibility checks the decided mode against its physical envelope
// and multiplies confidence down for each violation. Both penalties can
// apply to the same window.
func (e *Engine) validatePlausibility(result *models.InferenceResult, window []models.SensorSample) {
	characteristics, ok := e.characteristics[result.Mode]
	if !ok {
		return
	}

	var speeds []float64
	for i := range window {
		if window[i].Speed != nil {
			speeds = append(speeds, *window[i].Speed)
		}
	}
	if len(speeds) > 0 {
		avgSpeed := stats.Mean(speeds)
		if avgSpeed < characteristics.MinSpeed || avgSpeed > characteristics.MaxSpeed {
			result.Confidence = clamp01(result.Confidence * speedMismatchPenalty)
			result.Evidence.Flags = append(result.Evidence.Flags, models.FlagSpeedMismatch)
		}
	}

	magnitudes := make([]float64, len(window))
	for i := range window {
		magnitudes[i] = window[i].AccelMagnitude()
	}
	if len(magnitudes) > 0 {
		variance := stats.Variance(magnitudes)
		pattern := characteristics.AccelerationPattern
		if (pattern == PatternSmooth && variance > smoothVarianceMax) ||
			(pattern == PatternIrregular && variance < irregularVarianceMin) {
			result.Confidence = clamp01(result.Confidence * accelPatternPenalty)
			result.Evidence.Flags = append(result.Evidence.Flags, models.FlagAccelPatternMismatch)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
