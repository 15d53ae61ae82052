// internal/models/price.go
package models

// PositionRequest is the body of both price endpoints. Pointers tell a
// missing coordinate apart from 0.
type PositionRequest struct {
	Lat  *float64 `json:"lat"`
	Long *float64 `json:"long"`
}

type Position struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// PriceRecord is the all-time view for one postcode. Field order is part of
// the wire contract: clients read the values positionally.
type PriceRecord struct {
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	AvgPrice float64 `json:"avg_price"`
}

// YearRecord groups a postcode's sale amounts by "YYYY".
type YearRecord struct {
	Lat   float64            `json:"lat"`
	Long  float64            `json:"long"`
	Years map[string][]int64 `json:"years"`
}

// keyed by postcode
type PriceResponse map[string]PriceRecord

type YearResponse map[string]YearRecord
