// ABOUTME: Client for DigiLocker document verification
// ABOUTME: Cross-checks OCR-extracted fields against government records

package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// DigiLockerResult is the outcome of a verification attempt.
type DigiLockerResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// DigiLockerClient verifies extracted document fields against DigiLocker.
type DigiLockerClient struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewDigiLockerClient creates a client for the verification endpoint.
func NewDigiLockerClient(url, apiKey string) *DigiLockerClient {
	return &DigiLockerClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default().With("component", "digilocker"),
	}
}

// Verify checks the extracted fields for a document type ("pan" or
// "aadhaar") against DigiLocker. Failures come back as unsuccessful
// results so the agent can decide how to proceed.
func (c *DigiLockerClient) Verify(ctx context.Context, docType string, docInfo map[string]any) DigiLockerResult {
	if c.url == "" {
		return DigiLockerResult{Success: false, Message: "DigiLocker service not configured"}
	}

	body, err := json.Marshal(map[string]any{
		"doc_type": docType,
		"doc_info": docInfo,
	})
	if err != nil {
		return DigiLockerResult{Success: false, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return DigiLockerResult{Success: false, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("DigiLocker request failed", "error", err)
		return DigiLockerResult{Success: false, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("DigiLocker returned error", "status", resp.StatusCode)
		return DigiLockerResult{Success: false, Message: "DigiLocker API error"}
	}

	var raw struct {
		Verified bool           `json:"verified"`
		Message  string         `json:"message"`
		Data     map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return DigiLockerResult{Success: false, Message: "decoding DigiLocker response: " + err.Error()}
	}

	msg := raw.Message
	if msg == "" {
		msg = "Verification completed"
	}
	return DigiLockerResult{Success: raw.Verified, Message: msg, Data: raw.Data}
}
