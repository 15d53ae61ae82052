// Package flood queries the Environment Agency flood-monitoring API for flood
// areas near a point and phrases them as a warning line.
package flood

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"houseprice-heatmap/pkg/logger"
)

const floodAreasPath = "/flood-monitoring/id/floodAreas/"

// Area is the subset of a flood area item the warning uses. Both fields are optional upstream.
type Area struct {
	RiverOrSea  string `json:"riverOrSea"`
	Description string `json:"description"`
}

type areasResponse struct {
	Items []Area `json:"items"`
}

type Client struct {
	baseURL    string
	dist       float64
	httpClient *http.Client
}

// NewClient builds a client for baseURL (scheme and host only); dist is the search radius in km.
func NewClient(baseURL string, dist float64, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dist:       dist,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Areas lists flood areas within the configured distance of (lat, long).
func (c *Client) Areas(ctx context.Context, lat, long float64) ([]Area, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("long", formatCoord(long))
	query.Set("dist", formatCoord(c.dist))
	areasURL := c.baseURL + floodAreasPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, areasURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create flood areas request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.GlobalLogger.Errorf("Flood areas request failed: url=%s, error=%v", areasURL, err)
		return nil, fmt.Errorf("failed to send flood areas request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read flood areas response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.GlobalLogger.Errorf("Flood areas request failed: url=%s, status=%s, response=%s", areasURL, resp.Status, string(body))
		return nil, fmt.Errorf("flood areas request failed: %s", resp.Status)
	}

	var decoded areasResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode flood areas response: %w", err)
	}
	logger.GlobalLogger.Debugf("Flood areas near %s,%s: %d", formatCoord(lat), formatCoord(long), len(decoded.Items))
	return decoded.Items, nil
}

// Warning fetches the flood areas near (lat, long) and formats them with FormatWarning.
func (c *Client) Warning(ctx context.Context, lat, long float64) (string, error) {
	areas, err := c.Areas(ctx, lat, long)
	if err != nil {
		return "", err
	}
	return FormatWarning(areas), nil
}

// FormatWarning returns "" for no areas. Otherwise only the last area is
// described, matching the mobile client's banner.
func FormatWarning(areas []Area) string {
	if len(areas) == 0 {
		return ""
	}
	last := areas[len(areas)-1]
	riverOrSea := ""
	if last.RiverOrSea != "" {
		riverOrSea = last.RiverOrSea + ":"
	}
	return fmt.Sprintf("⚠ Flood prone areas: %s \n%s", riverOrSea, last.Description)
}
