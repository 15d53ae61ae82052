package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/internal/models"
	"houseprice-heatmap/internal/repositories"
	"houseprice-heatmap/pkg/cache"
	"houseprice-heatmap/pkg/landregistry"
	"houseprice-heatmap/pkg/postcodes"
)

type fakePostcodes struct {
	result []postcodes.Postcode
	err    error
	calls  int
}

func (f *fakePostcodes) Nearby(context.Context, float64, float64) ([]postcodes.Postcode, error) {
	f.calls++
	return f.result, f.err
}

type fakeSales struct {
	result []landregistry.Sale
	err    error
	asked  [][]string
}

func (f *fakeSales) PricesPaid(_ context.Context, pcs []string) ([]landregistry.Sale, error) {
	f.asked = append(f.asked, pcs)
	return f.result, f.err
}

var brighton = []postcodes.Postcode{
	{Postcode: "BN1 1AA", Latitude: 50.8225, Longitude: -0.1372},
	{Postcode: "BN1 1AB", Latitude: 50.8230, Longitude: -0.1380},
}

func TestFormatAllPricesGroupsGlobally(t *testing.T) {
	// Sales for one postcode are not contiguous; all of them count.
	sales := []landregistry.Sale{
		{Postcode: "BN1 1AA", Amount: 100000, Date: "2001-01-01"},
		{Postcode: "BN1 1AB", Amount: 300000, Date: "2002-01-01"},
		{Postcode: "BN1 1AA", Amount: 200000, Date: "2003-01-01"},
		{Postcode: "BN9 9ZZ", Amount: 50000, Date: "2004-01-01"},
	}
	got := FormatAllPrices(brighton, sales)
	want := models.PriceResponse{
		"BN1 1AA": {Lat: 50.8225, Long: -0.1372, AvgPrice: 150000},
		"BN1 1AB": {Lat: 50.8230, Long: -0.1380, AvgPrice: 300000},
		"BN9 9ZZ": {Lat: 0, Long: 0, AvgPrice: 50000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFormatPricesByYear(t *testing.T) {
	sales := []landregistry.Sale{
		{Postcode: "BN1 1AA", Amount: 100, Date: "2005-03-01"},
		{Postcode: "BN1 1AA", Amount: 300, Date: "2005-09-30"},
		{Postcode: "BN1 1AA", Amount: 50, Date: "2010-01-01"},
		{Postcode: "BN1 1AB", Amount: 70, Date: "1999-12-31"},
	}
	got := FormatPricesByYear(brighton, sales)
	want := models.YearResponse{
		"BN1 1AA": {Lat: 50.8225, Long: -0.1372, Years: map[string][]int64{"2005": {100, 300}, "2010": {50}}},
		"BN1 1AB": {Lat: 50.8230, Long: -0.1380, Years: map[string][]int64{"1999": {70}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAttachLatLongNormalizesPostcodes(t *testing.T) {
	prices := models.PriceResponse{"bn1  1aa": {AvgPrice: 1}}
	AttachLatLong(brighton, prices)
	if rec := prices["bn1  1aa"]; rec.Lat != 50.8225 || rec.Long != -0.1372 {
		t.Errorf("got %+v, want coordinates of BN1 1AA", rec)
	}
}

func TestFilterWithinRadius(t *testing.T) {
	pos := models.Position{Lat: 50.8225, Long: -0.1372}
	nearby := append([]postcodes.Postcode{{Postcode: "RH1 1AA", Latitude: 51.24, Longitude: -0.17}}, brighton...)
	got := FilterWithinRadius(pos, nearby, 2000)
	if len(got) != 2 || got[0].Postcode != "BN1 1AA" {
		t.Errorf("got %+v, want the two Brighton postcodes", got)
	}
	if got := FilterWithinRadius(pos, nearby, 0); len(got) != 3 {
		t.Errorf("radius 0: got %d postcodes, want 3", len(got))
	}
}

func TestPricesByLocationUsesCache(t *testing.T) {
	pcs := &fakePostcodes{result: brighton}
	sales := &fakeSales{result: []landregistry.Sale{{Postcode: "BN1 1AA", Amount: 123, Date: "2000-01-01"}}}
	svc := NewPriceService(pcs, sales, repositories.NewPriceCache(cache.NewMemoryStore()), 2000, time.Hour)
	pos := models.Position{Lat: 50.8225, Long: -0.1372}

	first, err := svc.PricesByLocation(context.Background(), pos)
	if err != nil {
		t.Fatalf("PricesByLocation: %v", err)
	}
	second, err := svc.PricesByLocation(context.Background(), pos)
	if err != nil {
		t.Fatalf("PricesByLocation (cached): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached response differs: %+v vs %+v", first, second)
	}
	if pcs.calls != 1 || len(sales.asked) != 1 {
		t.Errorf("upstream calls: postcodes=%d sales=%d, want 1 1", pcs.calls, len(sales.asked))
	}
	if want := []string{"BN1 1AA", "BN1 1AB"}; !reflect.DeepEqual(sales.asked[0], want) {
		t.Errorf("queried %v, want %v", sales.asked[0], want)
	}

	// The year view is cached separately.
	if _, err := svc.PricesByYear(context.Background(), pos); err != nil {
		t.Fatalf("PricesByYear: %v", err)
	}
	if pcs.calls != 2 {
		t.Errorf("postcode calls after year view: got %d, want 2", pcs.calls)
	}
}

func TestPricesNoPostcodesSkipsLandRegistry(t *testing.T) {
	sales := &fakeSales{}
	svc := NewPriceService(&fakePostcodes{}, sales, nil, 2000, 0)
	got, err := svc.PricesByYear(context.Background(), models.Position{Lat: 0, Long: 0})
	if err != nil {
		t.Fatalf("PricesByYear: %v", err)
	}
	if len(got) != 0 || len(sales.asked) != 0 {
		t.Errorf("got %+v with %d queries, want empty and none", got, len(sales.asked))
	}
}

func TestPricesUpstreamFailure(t *testing.T) {
	svc := NewPriceService(&fakePostcodes{err: errors.New("timeout")}, &fakeSales{}, nil, 2000, 0)
	if _, err := svc.PricesByLocation(context.Background(), models.Position{}); !errors.Is(err, apperrors.ErrUpstream) {
		t.Errorf("postcodes failure: got %v, want ErrUpstream", err)
	}

	svc = NewPriceService(&fakePostcodes{result: brighton}, &fakeSales{err: errors.New("502")}, nil, 2000, 0)
	_, err := svc.PricesByYear(context.Background(), models.Position{Lat: 50.8225, Long: -0.1372})
	if !errors.Is(err, apperrors.ErrUpstream) {
		t.Errorf("land registry failure: got %v, want ErrUpstream", err)
	}
	if appErr := apperrors.MapError(err); appErr.UserMessage != apperrors.MsgInternalError {
		t.Errorf("user message: got %q", appErr.UserMessage)
	}
}
