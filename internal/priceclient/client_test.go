package priceclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPricesPostsPosition(t *testing.T) {
	var got positionRequest
	var gotPath, gotMethod, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod, gotType = r.URL.Path, r.Method, r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"BN1 9RU":{"lat":50.8,"long":-0.1,"avg_price":250000}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	payload, err := c.Prices(context.Background(), 50.8, -0.1)
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if gotPath != "/dev/" || gotMethod != http.MethodPost || gotType != "application/json" {
		t.Errorf("request: got %s %s (%s)", gotMethod, gotPath, gotType)
	}
	if got.Lat != 50.8 || got.Long != -0.1 {
		t.Errorf("body: got %+v", got)
	}
	if len(payload) == 0 {
		t.Error("expected payload bytes")
	}
}

func TestPricesByYearPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL+"/", time.Second).PricesByYear(context.Background(), 1, 2); err != nil {
		t.Fatalf("PricesByYear: %v", err)
	}
	if gotPath != "/dev/pricesByYear" {
		t.Errorf("path: got %q", gotPath)
	}
}

func TestSentinelPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "Internal Server Error"}`))
	}))
	defer srv.Close()

	payload, err := NewClient(srv.URL, time.Second).Prices(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("sentinel should not be an error: %v", err)
	}
	if string(payload) != `{"message": "Internal Server Error"}` {
		t.Errorf("payload: got %s", payload)
	}
}

func TestOtherStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Too many requests"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Prices(context.Background(), 0, 0)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("err: got %v, want StatusError 429", err)
	}
}
