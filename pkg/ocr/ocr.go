// Package ocr extracts text from payment proof images. Extraction is best
// effort; callers treat failures as missing text, never as request errors.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tahanancrafts/marketplace-backend/pkg/config"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

// Extractor pulls raw text out of an image by URL.
type Extractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

// HTTPExtractor calls a hosted OCR endpoint.
type HTTPExtractor struct {
	httpClient *http.Client
	endpoint   string
	logger     *logger.Logger
}

// NewHTTPExtractor wires the hosted OCR endpoint, or a Noop when no
// endpoint is configured.
func NewHTTPExtractor(cfg config.OCRConfig, logg *logger.Logger) Extractor {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return Noop{}
	}
	return &HTTPExtractor{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   endpoint,
		logger:     logg,
	}
}

type extractRequest struct {
	ImageURL string `json:"image_url"`
}

type extractResponse struct {
	Text string `json:"text"`
}

// ExtractText posts the image URL and returns the recognized text.
func (e *HTTPExtractor) ExtractText(ctx context.Context, imageURL string) (string, error) {
	payload, err := json.Marshal(extractRequest{ImageURL: imageURL})
	if err != nil {
		return "", fmt.Errorf("encoding ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ocr endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr endpoint responded %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading ocr response: %w", err)
	}

	var out extractResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decoding ocr response: %w", err)
	}
	return out.Text, nil
}

// Noop is the disabled extractor.
type Noop struct{}

// ExtractText always reports no text available.
func (Noop) ExtractText(context.Context, string) (string, error) {
	return "", errors.New("ocr extraction disabled")
}
