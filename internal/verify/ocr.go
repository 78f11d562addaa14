// ABOUTME: Client for the external OCR service that extracts PAN and Aadhaar fields
// ABOUTME: Failures come back as unsuccessful results, never as hard errors

package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// OCRResult is the outcome of a document extraction attempt. The
// Fields map carries whatever the OCR service returned for the
// document type (pan_number, name, dob, aadhaar_number, address).
type OCRResult struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Fields  map[string]any `json:"data,omitempty"`
}

// OCRClient calls the PAN and Aadhaar extraction endpoints.
type OCRClient struct {
	panURL     string
	aadhaarURL string
	client     *http.Client
	logger     *slog.Logger
}

// NewOCRClient creates a client for the given extraction endpoints.
func NewOCRClient(panURL, aadhaarURL string) *OCRClient {
	return &OCRClient{
		panURL:     panURL,
		aadhaarURL: aadhaarURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "ocr"),
	}
}

// ExtractPAN sends a base64 PAN card image for field extraction.
// Service failures are reported in the result, not as an error, so
// the session flow continues and the agent sees the failure.
func (c *OCRClient) ExtractPAN(ctx context.Context, imageBase64 string) OCRResult {
	return c.extract(ctx, c.panURL, imageBase64)
}

// ExtractAadhaar sends a base64 Aadhaar card image for field extraction.
func (c *OCRClient) ExtractAadhaar(ctx context.Context, imageBase64 string) OCRResult {
	return c.extract(ctx, c.aadhaarURL, imageBase64)
}

func (c *OCRClient) extract(ctx context.Context, url, imageBase64 string) OCRResult {
	if url == "" {
		return OCRResult{Success: false, Error: "OCR service not configured"}
	}

	body, err := json.Marshal(map[string]string{"image": imageBase64})
	if err != nil {
		return OCRResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return OCRResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("OCR request failed", "url", url, "error", err)
		return OCRResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("OCR service returned error", "url", url, "status", resp.StatusCode)
		return OCRResult{Success: false, Error: fmt.Sprintf("OCR API error: status %d", resp.StatusCode)}
	}

	var result OCRResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return OCRResult{Success: false, Error: fmt.Sprintf("decoding OCR response: %v", err)}
	}
	return result
}
