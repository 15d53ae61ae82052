// Package heatmap turns price API payloads into weighted map points and
// summarises them for the area marker.
package heatmap

import (
	"fmt"
	"math"
	"strconv"
)

const (
	MinYear = 1995
	MaxYear = 2020
)

// GeoPoint is one heatmap input. Weight 0 means no price data for the point.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Weight    float64 `json:"weight"`
}

// NormalizeFlat reads a payload whose records are (lat, long, weight) in
// document order. On the server error sentinel it returns previous unchanged
// with updated=false. On a malformed payload it also returns previous, plus
// an error for the caller to log.
func NormalizeFlat(raw []byte, previous []GeoPoint) ([]GeoPoint, bool, error) {
	records, err := splitEntries(raw)
	if err != nil {
		return previous, false, err
	}
	if isServerError(records) {
		return previous, false, nil
	}

	points := make([]GeoPoint, 0, len(records))
	for _, rec := range records {
		values, err := positionalValues(rec.key, rec.raw)
		if err != nil {
			return previous, false, err
		}
		p, err := pointFromValues(rec.key, values[0], values[1])
		if err != nil {
			return previous, false, err
		}
		if p.Weight, err = decodeNumber(rec.key, "weight", values[2]); err != nil {
			return previous, false, err
		}
		points = append(points, p)
	}
	return points, true, nil
}

// NormalizeYearFiltered reads a payload whose third record value maps
// "YYYY" to sale amounts. The weight is the mean for year, or 0 when that
// year has no samples.
func NormalizeYearFiltered(raw []byte, year int, previous []GeoPoint) ([]GeoPoint, bool, error) {
	records, err := splitEntries(raw)
	if err != nil {
		return previous, false, err
	}
	if isServerError(records) {
		return previous, false, nil
	}

	yearKey := strconv.Itoa(year)
	points := make([]GeoPoint, 0, len(records))
	for _, rec := range records {
		values, err := positionalValues(rec.key, rec.raw)
		if err != nil {
			return previous, false, err
		}
		p, err := pointFromValues(rec.key, values[0], values[1])
		if err != nil {
			return previous, false, err
		}

		var years map[string][]flexNumber
		if err := json.Unmarshal(values[2], &years); err != nil {
			return previous, false, fmt.Errorf("%w: record %q years: %v", ErrMalformedPayload, rec.key, err)
		}
		p.Weight = mean(years[yearKey])
		points = append(points, p)
	}
	return points, true, nil
}

func pointFromValues(key string, latRaw, longRaw []byte) (GeoPoint, error) {
	lat, err := decodeNumber(key, "latitude", latRaw)
	if err != nil {
		return GeoPoint{}, err
	}
	long, err := decodeNumber(key, "longitude", longRaw)
	if err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{Latitude: lat, Longitude: long}, nil
}

// mean of an empty series is 0.
func mean(samples []flexNumber) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	return sum / float64(len(samples))
}

// AreaAverageWeight averages the positive weights, rounded half away from
// zero to 2 decimals. ok is false when no point carries data.
func AreaAverageWeight(points []GeoPoint) (avg float64, ok bool) {
	var sum float64
	n := 0
	for _, p := range points {
		if p.Weight > 0 {
			sum += p.Weight
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return Round2(sum / float64(n)), true
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarkerTitle is the label shown on the location marker.
func MarkerTitle(points []GeoPoint) string {
	avg, ok := AreaAverageWeight(points)
	if !ok {
		return "No price data for this area"
	}
	return fmt.Sprintf("Average price in this area is £%.0f", math.Round(avg))
}

// YearFromSlider maps the slider offset (0..25) to a calendar year.
func YearFromSlider(offset int) int {
	year := MinYear + offset
	if year < MinYear {
		return MinYear
	}
	if year > MaxYear {
		return MaxYear
	}
	return year
}

func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}
