package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

var errLocationDenied = errors.New("location permission denied")

// fixedLocator reports the position given on the command line.
type fixedLocator struct {
	lat, long float64
	granted   bool
}

func (l *fixedLocator) RequestPermission(context.Context) (bool, error) {
	return l.granted, nil
}

func (l *fixedLocator) CurrentPosition(context.Context) (float64, float64, error) {
	if !l.granted {
		return 0, 0, errLocationDenied
	}
	return l.lat, l.long, nil
}

// httpReachability treats any HTTP response from target as connectivity.
type httpReachability struct {
	target string
	client *http.Client
}

func newHTTPReachability(baseURL string, timeout time.Duration) *httpReachability {
	return &httpReachability{
		target: strings.TrimRight(baseURL, "/") + "/health",
		client: &http.Client{Timeout: timeout},
	}
}

func (r *httpReachability) Reachable(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.target, nil)
	if err != nil {
		return false, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return true, nil
}
