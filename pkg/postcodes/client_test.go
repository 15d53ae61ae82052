package postcodes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(url string) *Client {
	return NewClient(Options{BaseURL: url, Limit: 99, Radius: 2000, MaxRetries: 3})
}

func TestNearbyQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/postcodes" {
			t.Errorf("path: got %s, want /postcodes", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "50.84" || q.Get("lon") != "-0.13" || q.Get("limit") != "99" || q.Get("radius") != "2000" {
			t.Errorf("query: got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"status":200,"result":[
			{"postcode":"BN1 1AA","latitude":50.8401,"longitude":-0.1301,"distance":12.5},
			{"postcode":"BN1 1AB","latitude":50.841,"longitude":-0.131,"distance":140.2}
		]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Nearby(context.Background(), 50.84, -0.13)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 2 || got[0].Postcode != "BN1 1AA" || got[1].Distance != 140.2 {
		t.Errorf("got %+v", got)
	}
}

func TestNearbyNullResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"result":null}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Nearby(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}

func TestNearbyRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":200,"result":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Nearby(context.Background(), 1, 1); err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls: got %d, want 3", got)
	}
}

func TestNearbyGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Nearby(context.Background(), 1, 1); err == nil {
		t.Fatal("expected error after retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls: got %d, want 3", got)
	}
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/postcodes/BN1 9RU" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":404,"error":"Postcode not found"}`))
			return
		}
		w.Write([]byte(`{"status":200,"result":{"postcode":"BN1 9RU","latitude":50.8614,"longitude":-0.0836}}`))
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)

	lat, long, err := c.Geocode(context.Background(), " BN1 9RU ")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if lat != 50.8614 || long != -0.0836 {
		t.Errorf("got (%v, %v), want (50.8614, -0.0836)", lat, long)
	}

	if _, err := c.Lookup(context.Background(), "ZZ9 9ZZ"); !errors.Is(err, ErrPostcodeNotFound) {
		t.Errorf("unknown postcode: got %v, want ErrPostcodeNotFound", err)
	}
	if _, err := c.Lookup(context.Background(), ""); !errors.Is(err, ErrPostcodeNotFound) {
		t.Errorf("empty postcode: got %v, want ErrPostcodeNotFound", err)
	}
}
