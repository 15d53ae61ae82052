package heatmap

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNormalizeFlatSingleRecord(t *testing.T) {
	raw := []byte(`{"a": {"lat": 1, "long": 2, "weight": 3}}`)
	got, updated, err := NormalizeFlat(raw, nil)
	if err != nil {
		t.Fatalf("NormalizeFlat: %v", err)
	}
	if !updated {
		t.Error("updated: got false, want true")
	}
	want := []GeoPoint{{Latitude: 1, Longitude: 2, Weight: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeFlatIsPositional(t *testing.T) {
	// Field names are ignored; only document order matters.
	raw := []byte(`{
		"BN1 9RU": {"lat": 50.84, "long": -0.13, "avg_price": 250000},
		"BN1 1AA": {"x": 50.82, "y": -0.14, "z": 310000.5},
		"BN2 0AA": [50.83, -0.12, "120000"]
	}`)
	got, _, err := NormalizeFlat(raw, nil)
	if err != nil {
		t.Fatalf("NormalizeFlat: %v", err)
	}
	want := []GeoPoint{
		{Latitude: 50.84, Longitude: -0.13, Weight: 250000},
		{Latitude: 50.82, Longitude: -0.14, Weight: 310000.5},
		{Latitude: 50.83, Longitude: -0.12, Weight: 120000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeFlatRepeatedKeys(t *testing.T) {
	// A repeated key keeps its first slot and its last value.
	raw := []byte(`{"a": {"lat": 1, "lat": 9, "long": 2, "weight": 3}, "b": {"lat": 4, "long": 5, "weight": 6}, "a": {"lat": 7, "long": 8, "weight": 10}}`)
	got, _, err := NormalizeFlat(raw, nil)
	if err != nil {
		t.Fatalf("NormalizeFlat: %v", err)
	}
	want := []GeoPoint{
		{Latitude: 7, Longitude: 8, Weight: 10},
		{Latitude: 4, Longitude: 5, Weight: 6},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got, _, err = NormalizeFlat([]byte(`{"a": {"lat": 1, "lat": 9, "long": 2, "weight": 3}}`), nil)
	if err != nil {
		t.Fatalf("NormalizeFlat: %v", err)
	}
	if want := []GeoPoint{{Latitude: 9, Longitude: 2, Weight: 3}}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeFlatServerErrorKeepsPrevious(t *testing.T) {
	previous := []GeoPoint{{Latitude: 9, Longitude: 8, Weight: 7}}
	got, updated, err := NormalizeFlat([]byte(`{"message": "Internal Server Error"}`), previous)
	if err != nil {
		t.Fatalf("sentinel should not be an error, got %v", err)
	}
	if updated {
		t.Error("updated: got true, want false")
	}
	if !reflect.DeepEqual(got, previous) {
		t.Errorf("got %+v, want previous %+v", got, previous)
	}
}

func TestNormalizeFlatEmptyPayload(t *testing.T) {
	got, updated, err := NormalizeFlat([]byte(`{}`), []GeoPoint{{Weight: 1}})
	if err != nil {
		t.Fatalf("NormalizeFlat: %v", err)
	}
	if !updated || len(got) != 0 {
		t.Errorf("got updated=%v len=%d, want true/0", updated, len(got))
	}
}

func TestNormalizeFlatIdempotent(t *testing.T) {
	raw := []byte(`{"a": {"lat": 1, "long": 2, "weight": 3}, "b": {"lat": 4, "long": 5, "weight": 0}}`)
	first, _, err := NormalizeFlat(raw, nil)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, _, err := NormalizeFlat(raw, nil)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("outputs differ: %+v vs %+v", first, second)
	}
}

func TestNormalizeFlatMalformed(t *testing.T) {
	previous := []GeoPoint{{Latitude: 1, Longitude: 1, Weight: 1}}
	cases := map[string]string{
		"not json":      `not json`,
		"scalar":        `42`,
		"short record":  `{"a": {"lat": 1, "long": 2}}`,
		"string weight": `{"a": {"lat": 1, "long": 2, "weight": "lots"}}`,
		"other message": `{"message": "Forbidden"}`,
		"truncated":     `{"a": {"lat": 1, "long": 2, "weight": 3}`,
		"trailing data": `{"a": {"lat": 1, "long": 2, "weight": 3}} {"junk"`,
		"trailing word": `{"a": {"lat": 1, "long": 2, "weight": 3}} x`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, updated, err := NormalizeFlat([]byte(raw), previous)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("err: got %v, want ErrMalformedPayload", err)
			}
			if updated || !reflect.DeepEqual(got, previous) {
				t.Errorf("malformed payload should keep previous, got %+v updated=%v", got, updated)
			}
		})
	}
}

func TestNormalizeYearFilteredMean(t *testing.T) {
	raw := []byte(`{"BN1": {"lat": 1, "long": 2, "years": {"2005": [10, 20, 30], "2006": [99]}}}`)
	got, updated, err := NormalizeYearFiltered(raw, 2005, nil)
	if err != nil {
		t.Fatalf("NormalizeYearFiltered: %v", err)
	}
	want := []GeoPoint{{Latitude: 1, Longitude: 2, Weight: 20}}
	if !updated || !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v updated=%v, want %+v", got, updated, want)
	}
}

func TestNormalizeYearFilteredMissingYear(t *testing.T) {
	raw := []byte(`{"BN1": {"lat": 1, "long": 2, "years": {"2006": [99]}}}`)
	got, _, err := NormalizeYearFiltered(raw, 2005, nil)
	if err != nil {
		t.Fatalf("NormalizeYearFiltered: %v", err)
	}
	if len(got) != 1 || got[0].Weight != 0 {
		t.Errorf("got %+v, want weight 0", got)
	}
}

func TestNormalizeYearFilteredEmptySamples(t *testing.T) {
	raw := []byte(`{"BN1": {"lat": 1, "long": 2, "years": {"2005": []}}, "BN2": {"lat": 3, "long": 4, "years": {}}}`)
	got, _, err := NormalizeYearFiltered(raw, 2005, nil)
	if err != nil {
		t.Fatalf("NormalizeYearFiltered: %v", err)
	}
	for _, p := range got {
		if p.Weight != 0 || math.IsNaN(p.Weight) {
			t.Errorf("point %+v: want weight 0", p)
		}
	}
}

func TestNormalizeYearFilteredServerError(t *testing.T) {
	previous := []GeoPoint{{Latitude: 5, Longitude: 6, Weight: 7}}
	got, updated, err := NormalizeYearFiltered([]byte(`{"message":"Internal Server Error"}`), 2005, previous)
	if err != nil || updated || !reflect.DeepEqual(got, previous) {
		t.Errorf("got %+v updated=%v err=%v, want previous unchanged", got, updated, err)
	}
}

func TestNormalizeYearFilteredRejectsFlatShape(t *testing.T) {
	raw := []byte(`{"BN1": {"lat": 1, "long": 2, "avg_price": 100}}`)
	if _, _, err := NormalizeYearFiltered(raw, 2005, nil); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("err: got %v, want ErrMalformedPayload", err)
	}
}

func TestAreaAverageWeightSkipsZero(t *testing.T) {
	avg, ok := AreaAverageWeight([]GeoPoint{{Weight: 0}, {Weight: 10}, {Weight: 20}})
	if !ok || avg != 15 {
		t.Errorf("got %.2f ok=%v, want 15.00 true", avg, ok)
	}
}

func TestAreaAverageWeightNoData(t *testing.T) {
	for _, points := range [][]GeoPoint{nil, {{Weight: 0}, {Weight: 0}}, {{Weight: -3}}} {
		avg, ok := AreaAverageWeight(points)
		if ok || avg != 0 || math.IsNaN(avg) {
			t.Errorf("%+v: got %v ok=%v, want 0 false", points, avg, ok)
		}
	}
}

func TestAreaAverageWeightRounds(t *testing.T) {
	avg, _ := AreaAverageWeight([]GeoPoint{{Weight: 1}, {Weight: 2}, {Weight: 2}})
	if avg != 1.67 {
		t.Errorf("got %v, want 1.67", avg)
	}
	avg, _ = AreaAverageWeight([]GeoPoint{{Weight: 0.125}, {Weight: 0.125}})
	if avg != 0.13 {
		t.Errorf("half should round away from zero: got %v, want 0.13", avg)
	}
}

func TestMarkerTitle(t *testing.T) {
	if got, want := MarkerTitle([]GeoPoint{{Weight: 250000.4}, {Weight: 0}}), "Average price in this area is £250000"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := MarkerTitle(nil), "No price data for this area"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestYearFromSlider(t *testing.T) {
	cases := map[int]int{0: 1995, 5: 2000, 25: 2020, -1: 1995, 40: 2020}
	for offset, want := range cases {
		if got := YearFromSlider(offset); got != want {
			t.Errorf("YearFromSlider(%d): got %d, want %d", offset, got, want)
		}
	}
}
