package models

// Transport mode labels
const (
	ModeWalking    = "walking"
	ModeCycling    = "cycling"
	ModeBus        = "bus"
	ModeTrain      = "train"
	ModeTram       = "tram"
	ModeCar        = "car"
	ModeStationary = "stationary"
)

// TransportModes lists every mode the pipeline can emit, in canonical order.
var TransportModes = []string{
	ModeWalking,
	ModeCycling,
	ModeBus,
	ModeTrain,
	ModeTram,
	ModeCar,
	ModeStationary,
}

// TransitModes is the subset of modes corroborable by transit vehicle data.
// Fusion consults the proximity provider only for these.
var TransitModes = map[string]bool{
	ModeBus:   true,
	ModeTrain: true,
	ModeTram:  true,
}

// ModePrediction is the classifier output for one feature window.
type ModePrediction struct {
	WindowIndex  int                `json:"window_index"`
	Mode         string             `json:"transport_mode"`
	Confidence   float64            `json:"confidence"` // 0~1
	Distribution map[string]float64 `json:"probabilities"`
}
