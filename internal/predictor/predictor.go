package predictor

import (
	"context"
	"errors"

	"github.com/modesense/tmd-backend-go/internal/features"
	"github.com/modesense/tmd-backend-go/internal/models"
)

// ErrNotReady signals that the backing model has not been trained yet. It is
// an expected condition: callers fall back to the speed heuristic instead of
// failing the request.
var ErrNotReady = errors.New("predictor: model not trained")

// ModePredictor turns feature vectors into per-window mode predictions.
// Implementations must be one-to-one and order-preserving with their input.
type ModePredictor interface {
	Predict(ctx context.Context, vectors []*features.Vector) ([]models.ModePrediction, error)
	Info(ctx context.Context) (*ModelInfo, error)
}

// ModelInfo describes the remote model's state.
type ModelInfo struct {
	IsTrained      bool     `json:"is_trained"`
	FeatureCount   int      `json:"feature_count,omitempty"`
	SchemaVersion  string   `json:"schema_version,omitempty"`
	TransportModes []string `json:"transport_modes,omitempty"`
	LastTrained    string   `json:"last_trained,omitempty"`
}
