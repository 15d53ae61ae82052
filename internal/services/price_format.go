package services

import (
	"houseprice-heatmap/internal/models"
	"houseprice-heatmap/pkg/cache"
	"houseprice-heatmap/pkg/landregistry"
	"houseprice-heatmap/pkg/postcodes"
	"houseprice-heatmap/pkg/spatial"
)

// FormatAllPrices averages every sale per postcode. Coordinates come from
// nearby; postcodes it does not list stay at (0, 0).
func FormatAllPrices(nearby []postcodes.Postcode, sales []landregistry.Sale) models.PriceResponse {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, sale := range sales {
		sums[sale.Postcode] += float64(sale.Amount)
		counts[sale.Postcode]++
	}

	res := make(models.PriceResponse, len(counts))
	for pc, n := range counts {
		res[pc] = models.PriceRecord{AvgPrice: sums[pc] / float64(n)}
	}
	AttachLatLong(nearby, res)
	return res
}

// FormatPricesByYear lists each postcode's sale amounts under the sale's year,
// in the order the sales were returned.
func FormatPricesByYear(nearby []postcodes.Postcode, sales []landregistry.Sale) models.YearResponse {
	res := make(models.YearResponse)
	for _, sale := range sales {
		rec, ok := res[sale.Postcode]
		if !ok {
			rec = models.YearRecord{Years: make(map[string][]int64)}
		}
		year := sale.Year()
		rec.Years[year] = append(rec.Years[year], sale.Amount)
		res[sale.Postcode] = rec
	}
	AttachYearLatLong(nearby, res)
	return res
}

type postcodeIndex map[string]postcodes.Postcode

func indexPostcodes(nearby []postcodes.Postcode) postcodeIndex {
	idx := make(postcodeIndex, len(nearby))
	for _, pc := range nearby {
		idx[cache.NormalizePostcode(pc.Postcode)] = pc
	}
	return idx
}

func (idx postcodeIndex) lookup(postcode string) (postcodes.Postcode, bool) {
	pc, ok := idx[cache.NormalizePostcode(postcode)]
	return pc, ok
}

// AttachLatLong fills coordinates for every record whose postcode is in nearby.
func AttachLatLong(nearby []postcodes.Postcode, prices models.PriceResponse) {
	idx := indexPostcodes(nearby)
	for key, rec := range prices {
		if pc, ok := idx.lookup(key); ok {
			rec.Lat, rec.Long = pc.Latitude, pc.Longitude
			prices[key] = rec
		}
	}
}

func AttachYearLatLong(nearby []postcodes.Postcode, prices models.YearResponse) {
	idx := indexPostcodes(nearby)
	for key, rec := range prices {
		if pc, ok := idx.lookup(key); ok {
			rec.Lat, rec.Long = pc.Latitude, pc.Longitude
			prices[key] = rec
		}
	}
}

// FilterWithinRadius drops postcodes whose centroid lies outside radiusMeters
// of pos. A non-positive radius keeps everything.
func FilterWithinRadius(pos models.Position, nearby []postcodes.Postcode, radiusMeters float64) []postcodes.Postcode {
	if radiusMeters <= 0 {
		return nearby
	}
	circle := spatial.NewCircle(pos.Lat, pos.Long, radiusMeters)
	kept := make([]postcodes.Postcode, 0, len(nearby))
	for _, pc := range nearby {
		if circle.Contains(pc.Latitude, pc.Longitude) {
			kept = append(kept, pc)
		}
	}
	return kept
}

func postcodeList(nearby []postcodes.Postcode) []string {
	list := make([]string, len(nearby))
	for i, pc := range nearby {
		list[i] = pc.Postcode
	}
	return list
}
