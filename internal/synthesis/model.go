// internal/synthesis/model.go
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Model is the generation backend behind the engine. Implementations do
// not need to be safe for concurrent Generate calls; the engine
// serializes access.
type Model interface {
	// Load prepares the model for generation. Called once at startup.
	Load(ctx context.Context) error
	// Generate produces text for the prompt under the given sampling
	// parameters. Blocking; returns the full decoded output.
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
	// Close releases the model.
	Close() error
}

// HTTPModel talks to a local inference server over its HTTP API. The
// server owns the weights; Load only verifies it is up.
type HTTPModel struct {
	client  *http.Client
	baseURL string
}

func NewHTTPModel(baseURL string, timeout time.Duration) *HTTPModel {
	return &HTTPModel{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *HTTPModel) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference server not healthy: status %d", resp.StatusCode)
	}
	return nil
}

func (m *HTTPModel) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	requestBody := map[string]interface{}{
		"prompt":      prompt,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	body, _ := json.Marshal(requestBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/generate", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation failed with status %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("malformed generation response: %w", err)
	}
	return strings.TrimSpace(result.Text), nil
}

func (m *HTTPModel) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
