package session

import "context"

// Locator is the device location service.
type Locator interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
	CurrentPosition(ctx context.Context) (lat, long float64, err error)
}

// Geocoder resolves a UK postcode (or address) to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, long float64, err error)
}

// Reachability reports whether the network is usable.
type Reachability interface {
	Reachable(ctx context.Context) (bool, error)
}

// PriceSource returns raw price API payloads.
type PriceSource interface {
	Prices(ctx context.Context, lat, long float64) ([]byte, error)
	PricesByYear(ctx context.Context, lat, long float64) ([]byte, error)
}

// FloodSource returns the flood warning line for a position ("" when none).
type FloodSource interface {
	Warning(ctx context.Context, lat, long float64) (string, error)
}
