package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
)

// PlatformClient handles communication with the device simulation platform API
type PlatformClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPlatformClient creates a new platform API client
func NewPlatformClient(baseURL string) *PlatformClient {
	return &PlatformClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StatusesResponse is the platform's per-tick status payload
type StatusesResponse struct {
	Statuses map[string]domain.ProjectSimulationStatus `json:"statuses"`
}

// FetchStatuses retrieves the current simulation status of every project.
// It is the production StatusSource for the monitor.
func (c *PlatformClient) FetchStatuses(ctx context.Context) (map[string]domain.ProjectSimulationStatus, error) {
	body, err := c.get(ctx, "/v1/simulations/status")
	if err != nil {
		return nil, err
	}

	var resp StatusesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statuses: %w", err)
	}

	return resp.Statuses, nil
}

// StartSimulation starts a project's simulation on the platform
func (c *PlatformClient) StartSimulation(ctx context.Context, projectID string) error {
	return c.post(ctx, fmt.Sprintf("/v1/simulations/%s/start", projectID), nil)
}

// StopSimulation stops a project's simulation on the platform
func (c *PlatformClient) StopSimulation(ctx context.Context, projectID string) error {
	return c.post(ctx, fmt.Sprintf("/v1/simulations/%s/stop", projectID), nil)
}

// RetryDevice asks the platform to reconnect one simulated device. This
// makes the client usable as the alert layer's retry collaborator.
func (c *PlatformClient) RetryDevice(ctx context.Context, deviceID string) error {
	return c.post(ctx, fmt.Sprintf("/v1/devices/%s/retry", deviceID), nil)
}

// ListDevices returns the platform's device list verbatim
func (c *PlatformClient) ListDevices(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/v1/devices")
}

// ListTargets returns the platform's target system list verbatim
func (c *PlatformClient) ListTargets(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/v1/target-systems")
}

func (c *PlatformClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call platform API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("platform API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (c *PlatformClient) post(ctx context.Context, path string, payload interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call platform API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("platform API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
