// Package priceclient calls the house price API and hands back raw payloads
// for the heatmap normalizer.
package priceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"houseprice-heatmap/internal/heatmap"
	"houseprice-heatmap/pkg/logger"
)

const (
	flatPath   = "/dev/"
	byYearPath = "/dev/pricesByYear"
)

type positionRequest struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Client sends each request once; there is no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Prices fetches the all-time average price per postcode around (lat, long).
func (c *Client) Prices(ctx context.Context, lat, long float64) ([]byte, error) {
	return c.post(ctx, flatPath, lat, long)
}

// PricesByYear fetches per-year sale amounts per postcode around (lat, long).
func (c *Client) PricesByYear(ctx context.Context, lat, long float64) ([]byte, error) {
	return c.post(ctx, byYearPath, lat, long)
}

func (c *Client) post(ctx context.Context, path string, lat, long float64) ([]byte, error) {
	body, err := json.Marshal(positionRequest{Lat: lat, Long: long})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price request: %w", err)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create price request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.GlobalLogger.Errorf("Price request failed: url=%s, error=%v", endpoint, err)
		return nil, fmt.Errorf("failed to send price request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read price response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return payload, nil
	}
	// The error sentinel is a valid payload for the normalizer, which treats it as no update.
	if resp.StatusCode >= 500 && isSentinel(payload) {
		logger.GlobalLogger.Debugf("Price API returned the server error sentinel: url=%s, status=%s", endpoint, resp.Status)
		return payload, nil
	}
	logger.GlobalLogger.Errorf("Price request failed: url=%s, status=%s, response=%s", endpoint, resp.Status, string(payload))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
}

func isSentinel(payload []byte) bool {
	var body struct {
		Message string `json:"message"`
	}
	return json.Unmarshal(payload, &body) == nil && body.Message == heatmap.ServerErrorMessage
}

// StatusError is returned for non-2xx responses other than the server error sentinel.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("price API responded %d: %s", e.StatusCode, e.Body)
}
