package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/modesense/tmd-backend-go/internal/features"
	"github.com/modesense/tmd-backend-go/internal/models"
)

// RemoteClient calls an external model service over HTTP. The service is an
// opaque trained predictor; this client only enforces the feature-schema
// contract and maps its "not trained" response onto ErrNotReady.
type RemoteClient struct {
	baseURL    string
	schema     *features.Schema
	httpClient *http.Client
	log        *logrus.Logger
}

// NewRemoteClient creates a predictor client bound to one feature schema.
func NewRemoteClient(baseURL string, schema *features.Schema, timeout time.Duration, log *logrus.Logger) *RemoteClient {
	if log == nil {
		log = logrus.New()
	}
	return &RemoteClient{
		baseURL: baseURL,
		schema:  schema,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type predictRequest struct {
	SchemaVersion string      `json:"schema_version"`
	FeatureNames  []string    `json:"feature_names"`
	Windows       [][]float64 `json:"windows"`
}

// Predict posts the whole batch of feature vectors in one round-trip and
// returns the per-window predictions in input order.
func (c *RemoteClient) Predict(ctx context.Context, vectors []*features.Vector) ([]models.ModePrediction, error) {
	if len(vectors) == 0 {
		return nil, nil
	}

	// Schema mismatch means the model would silently read misaligned
	// columns; refuse before any round-trip.
	windows := make([][]float64, len(vectors))
	for i, vec := range vectors {
		if !c.schema.Matches(vec.Schema()) {
			return nil, fmt.Errorf("predictor: vector %d has schema %s, client expects %s",
				i, vec.Schema().Version(), c.schema.Version())
		}
		windows[i] = vec.Values()
	}

	payload, err := json.Marshal(predictRequest{
		SchemaVersion: c.schema.Version(),
		FeatureNames:  c.schema.Keys(),
		Windows:       windows,
	})
	if err != nil {
		return nil, fmt.Errorf("predictor: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("predictor: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.WithField("windows", len(windows)).Debug("sending predict request to model service")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictor: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// The model service answers 400 when it has no trained model.
		return nil, ErrNotReady
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("predictor: model service returned %d: %s", resp.StatusCode, body)
	}

	var predictions []models.ModePrediction
	if err := json.NewDecoder(resp.Body).Decode(&predictions); err != nil {
		return nil, fmt.Errorf("predictor: failed to decode response: %w", err)
	}
	if len(predictions) != len(vectors) {
		return nil, fmt.Errorf("predictor: got %d predictions for %d windows", len(predictions), len(vectors))
	}

	return predictions, nil
}

// Info fetches the remote model's state.
func (c *RemoteClient) Info(ctx context.Context) (*ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/model/info", nil)
	if err != nil {
		return nil, fmt.Errorf("predictor: failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictor: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("predictor: model service returned %d: %s", resp.StatusCode, body)
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("predictor: failed to decode response: %w", err)
	}
	return &info, nil
}
