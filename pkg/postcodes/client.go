// Package postcodes is a client for the postcodes.io API.
package postcodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"houseprice-heatmap/pkg/logger"
	"houseprice-heatmap/pkg/metrics"
)

var ErrPostcodeNotFound = errors.New("postcode not found")

// Postcode is one postcodes.io result. Distance is in metres and only set by Nearby.
type Postcode struct {
	Postcode  string  `json:"postcode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance,omitempty"`
}

type Options struct {
	BaseURL    string
	Limit      int
	Radius     int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

type Client struct {
	baseURL    string
	limit      int
	radius     int
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limit:      opts.Limit,
		radius:     opts.Radius,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type nearbyResponse struct {
	Status int        `json:"status"`
	Result []Postcode `json:"result"`
}

type lookupResponse struct {
	Status int       `json:"status"`
	Result *Postcode `json:"result"`
	Error  string    `json:"error"`
}

// Nearby returns the postcodes within the configured radius of (lat, long), nearest first.
func (c *Client) Nearby(ctx context.Context, lat, long float64) ([]Postcode, error) {
	query := url.Values{}
	query.Set("lon", strconv.FormatFloat(long, 'f', -1, 64))
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	if c.limit > 0 {
		query.Set("limit", strconv.Itoa(c.limit))
	}
	if c.radius > 0 {
		query.Set("radius", strconv.Itoa(c.radius))
	}
	nearbyURL := c.baseURL + "/postcodes?" + query.Encode()

	body, status, err := c.get(ctx, "nearby", nearbyURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("postcode search failed: status=%d", status)
	}

	var decoded nearbyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode postcode search response: %w", err)
	}
	if decoded.Result == nil {
		return []Postcode{}, nil
	}
	return decoded.Result, nil
}

// Lookup resolves a single postcode to its centroid.
func (c *Client) Lookup(ctx context.Context, postcode string) (*Postcode, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return nil, ErrPostcodeNotFound
	}
	lookupURL := c.baseURL + "/postcodes/" + url.PathEscape(postcode)

	body, status, err := c.get(ctx, "lookup", lookupURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrPostcodeNotFound, postcode)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("postcode lookup failed: status=%d", status)
	}

	var decoded lookupResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode postcode lookup response: %w", err)
	}
	if decoded.Result == nil {
		return nil, fmt.Errorf("%w: %s", ErrPostcodeNotFound, postcode)
	}
	return decoded.Result, nil
}

// Geocode resolves a postcode to (lat, long).
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	pc, err := c.Lookup(ctx, address)
	if err != nil {
		return 0, 0, err
	}
	return pc.Latitude, pc.Longitude, nil
}

// get retries transport errors and 5xx responses with a linear back-off.
// Any other status is returned to the caller.
func (c *Client) get(ctx context.Context, operation, target string) ([]byte, int, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues("postcodes", operation).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, time.Duration(attempt-1)*c.retryDelay); err != nil {
				return nil, 0, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create postcodes request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			logger.GlobalLogger.Errorf("Failed to send postcodes request (attempt %d/%d): url=%s, error=%v", attempt, c.maxRetries, target, err)
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			logger.GlobalLogger.Errorf("Failed to read postcodes response (attempt %d/%d): url=%s, error=%v", attempt, c.maxRetries, target, err)
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			logger.GlobalLogger.Errorf("Postcodes request failed (attempt %d/%d): url=%s, status=%d, response=%s", attempt, c.maxRetries, target, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return body, resp.StatusCode, nil
	}

	metrics.UpstreamErrorsTotal.WithLabelValues("postcodes", operation).Inc()
	return nil, 0, fmt.Errorf("postcodes %s failed after %d attempts: %w", operation, c.maxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
