package watch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/optiscan/optiscan/schema"
)

// RemoteClient sends feature vectors to a running optiscan server instead of
// predicting locally.
type RemoteClient struct {
	baseURL string
	client  *http.Client
}

// NewRemoteClient creates a client for the server at baseURL.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Predict posts the vector to the server's predict endpoint.
func (rc *RemoteClient) Predict(fv schema.FeatureVector) (schema.PredictionResult, error) {
	payload, err := json.Marshal(fv)
	if err != nil {
		return schema.PredictionResult{}, fmt.Errorf("failed to encode features: %w", err)
	}

	resp, err := rc.client.Post(rc.baseURL+"/api/ml/predict", "application/json", bytes.NewReader(payload))
	if err != nil {
		return schema.PredictionResult{}, fmt.Errorf("predict request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.PredictionResult{}, fmt.Errorf("failed to read predict response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var remoteErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &remoteErr); err == nil && remoteErr.Error != "" {
			return schema.PredictionResult{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, remoteErr.Error)
		}
		return schema.PredictionResult{}, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var result schema.PredictionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return schema.PredictionResult{}, fmt.Errorf("failed to decode predict response: %w", err)
	}
	return result, nil
}

// Health checks whether the server is reachable.
func (rc *RemoteClient) Health() error {
	resp, err := rc.client.Get(rc.baseURL + "/api/ml/health")
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server health check returned %d", resp.StatusCode)
	}
	return nil
}
