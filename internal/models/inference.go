package models

// Plausibility-violation flags recorded on inference evidence.
const (
	FlagSpeedMismatch        = "speed_mismatch"
	FlagAccelPatternMismatch = "accel_pattern_mismatch"
	FlagHeuristicFallback    = "heuristic_fallback"
	FlagMalformedSample      = "malformed_sample"
)

// MatchPoint records one sensor point that fell inside both the spatial and
// temporal thresholds of a vehicle observation.
type MatchPoint struct {
	DistanceMeters  float64 `json:"distance_meters"`
	TimeDiffSeconds float64 `json:"time_diff_seconds"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Timestamp       float64 `json:"timestamp"`
}

// MatchedVehicle pairs a vehicle observation with its per-point match
// evidence and derived score.
type MatchedVehicle struct {
	Vehicle    VehiclePosition `json:"vehicle"`
	MatchScore float64         `json:"match_score"` // 0~1
	Points     []MatchPoint    `json:"points"`
}

// Evidence is the supporting trail attached to each inference result.
type Evidence struct {
	SensorBased     bool             `json:"sensor_based"`
	TransitMatched  bool             `json:"transit_matched"`
	MatchedVehicles []MatchedVehicle `json:"matched_vehicles,omitempty"`
	Flags           []string         `json:"flags,omitempty"`
}

// InferenceResult is the final per-window decision. Immutable once returned
// by the fusion engine.
type InferenceResult struct {
	WindowIndex  int                `json:"window_index"`
	Mode         string             `json:"transport_mode"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"probabilities"`
	Evidence     Evidence           `json:"evidence"`
}

// InferenceSummary aggregates a batch of results for the API response.
type InferenceSummary struct {
	TotalWindows      int            `json:"total_windows"`
	ModeDistribution  map[string]int `json:"mode_distribution"`
	MostCommonMode    string         `json:"most_common_mode"`
	AverageConfidence float64        `json:"average_confidence"`
	TransitMatches    int            `json:"transit_matches"`
	TransitMatchRate  float64        `json:"transit_match_rate"`
}

// InferenceRequest is the batch inference payload.
type InferenceRequest struct {
	SensorData []SensorSample `json:"sensor_data" binding:"required,min=1"`
}

// InferenceResponse wraps the per-window results with their summary.
type InferenceResponse struct {
	RequestID string            `json:"request_id"`
	Results   []InferenceResult `json:"results"`
	Summary   InferenceSummary  `json:"summary"`
}

// Summarize computes the batch summary for a result sequence.
func Summarize(results []InferenceResult) InferenceSummary {
	summary := InferenceSummary{
		TotalWindows:     len(results),
		ModeDistribution: make(map[string]int),
	}
	if len(results) == 0 {
		return summary
	}

	var totalConfidence float64
	for _, r := range results {
		summary.ModeDistribution[r.Mode]++
		totalConfidence += r.Confidence
		if r.Evidence.TransitMatched {
			summary.TransitMatches++
		}
	}
	summary.AverageConfidence = totalConfidence / float64(len(results))
	summary.TransitMatchRate = float64(summary.TransitMatches) / float64(len(results))

	// Canonical mode order breaks count ties deterministically.
	best := -1
	for _, mode := range TransportModes {
		if count := summary.ModeDistribution[mode]; count > best {
			best = count
			summary.MostCommonMode = mode
		}
	}
	return summary
}
