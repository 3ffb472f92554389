package fusion

import (
	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/stats"
)

// Minimum samples for the speed-band heuristic to say anything at all.
const heuristicMinSamples = 10

// Speed band upper bounds (m/s) for the fallback classification.
var heuristicBands = []struct {
	maxSpeed   float64
	mode       string
	confidence float64
}{
	{2.0, models.ModeWalking, 0.7},
	{8.0, models.ModeCycling, 0.6},
	{15.0, models.ModeTram, 0.5},
	{30.0, models.ModeBus, 0.5},
}

// SpeedHeuristic classifies a sample batch by mean GPS speed alone. It is
// the degraded path used when no trained predictor is available, producing a
// single prediction for the whole batch. Fewer than 10 samples yields no
// prediction.
func SpeedHeuristic(samples []models.SensorSample) []models.ModePrediction {
	if len(samples) < heuristicMinSamples {
		return nil
	}

	var speeds []float64
	for i := range samples {
		if samples[i].Speed != nil {
			speeds = append(speeds, *samples[i].Speed)
		}
	}
	avgSpeed := stats.Mean(speeds)

	mode := models.ModeTrain
	confidence := 0.6
	for _, band := range heuristicBands {
		if avgSpeed < band.maxSpeed {
			mode = band.mode
			confidence = band.confidence
			break
		}
	}

	return []models.ModePrediction{{
		WindowIndex:  0,
		Mode:         mode,
		Confidence:   confidence,
		Distribution: map[string]float64{mode: confidence},
	}}
}
