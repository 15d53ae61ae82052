package heatmap

import (
	"errors"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ServerErrorMessage is the body the price API gateway returns when the lambda fails.
const ServerErrorMessage = "Internal Server Error"

var ErrMalformedPayload = errors.New("malformed price payload")

// field is one top-level entry of a price payload, kept with its raw bytes in document order.
type field struct {
	key string
	raw []byte
}

// splitEntries walks an object (or array) one level deep without reordering its members.
// A repeated object key keeps its first position and takes its last value.
func splitEntries(raw []byte) ([]field, error) {
	var whole jsoniter.RawMessage
	if err := json.Unmarshal(raw, &whole); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	iter := jsoniter.ParseBytes(json, raw)
	var fields []field

	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		seen := make(map[string]int)
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			value := it.SkipAndReturnBytes()
			if i, ok := seen[key]; ok {
				fields[i].raw = value
			} else {
				seen[key] = len(fields)
				fields = append(fields, field{key: key, raw: value})
			}
			return it.Error == nil
		})
	case jsoniter.ArrayValue:
		i := 0
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			fields = append(fields, field{key: strconv.Itoa(i), raw: it.SkipAndReturnBytes()})
			i++
			return it.Error == nil
		})
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformedPayload)
	}

	if iter.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, iter.Error)
	}
	return fields, nil
}

// isServerError reports whether the payload is the gateway's error sentinel.
func isServerError(fields []field) bool {
	for _, f := range fields {
		if f.key != "message" {
			continue
		}
		var msg string
		if err := json.Unmarshal(f.raw, &msg); err == nil && msg == ServerErrorMessage {
			return true
		}
	}
	return false
}

// positionalValues returns a record's values in document order.
func positionalValues(key string, raw []byte) ([][]byte, error) {
	entries, err := splitEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", key, err)
	}
	if len(entries) < 3 {
		return nil, fmt.Errorf("%w: record %q has %d values, want 3", ErrMalformedPayload, key, len(entries))
	}
	values := make([][]byte, len(entries))
	for i, e := range entries {
		values[i] = e.raw
	}
	return values, nil
}

// flexNumber accepts a JSON number, a numeric string or null (as 0).
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexNumber(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("cannot use %s as a number", string(data))
	}
	if str == "" {
		*f = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return err
	}
	*f = flexNumber(parsed)
	return nil
}

func decodeNumber(key, name string, raw []byte) (float64, error) {
	var n flexNumber
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: record %q %s: %v", ErrMalformedPayload, key, name, err)
	}
	return float64(n), nil
}
