package services

import (
	"context"
	"time"

	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/internal/models"
	"houseprice-heatmap/internal/repositories"
	"houseprice-heatmap/pkg/landregistry"
	"houseprice-heatmap/pkg/logger"
	"houseprice-heatmap/pkg/postcodes"
)

const DefaultCacheTTL = 24 * time.Hour

type PostcodeFinder interface {
	Nearby(ctx context.Context, lat, long float64) ([]postcodes.Postcode, error)
}

type SalesFinder interface {
	PricesPaid(ctx context.Context, postcodes []string) ([]landregistry.Sale, error)
}

type PriceService struct {
	postcodes PostcodeFinder
	sales     SalesFinder
	cache     repositories.PriceCache
	radius    float64
	ttl       time.Duration
}

// NewPriceService wires the upstream clients. cache may be nil.
func NewPriceService(
	postcodeFinder PostcodeFinder,
	salesFinder SalesFinder,
	cache repositories.PriceCache,
	radiusMeters float64,
	ttl time.Duration,
) *PriceService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PriceService{
		postcodes: postcodeFinder,
		sales:     salesFinder,
		cache:     cache,
		radius:    radiusMeters,
		ttl:       ttl,
	}
}

// PricesByLocation returns the all-time average price per postcode around pos.
func (s *PriceService) PricesByLocation(ctx context.Context, pos models.Position) (models.PriceResponse, error) {
	if s.cache != nil {
		cached, found, err := s.cache.GetPrices(ctx, pos)
		if err != nil {
			logger.GlobalLogger.Errorf("Price cache read failed: lat=%f, long=%f, error=%v", pos.Lat, pos.Long, err)
		} else if found {
			logger.GlobalLogger.Debugf("Price cache hit: lat=%f, long=%f", pos.Lat, pos.Long)
			return cached, nil
		}
	}

	nearby, sales, err := s.nearbySales(ctx, pos)
	if err != nil {
		return nil, err
	}
	prices := FormatAllPrices(nearby, sales)

	if s.cache != nil {
		if err := s.cache.SetPrices(ctx, pos, prices, s.ttl); err != nil {
			logger.GlobalLogger.Errorf("Price cache write failed: lat=%f, long=%f, error=%v", pos.Lat, pos.Long, err)
		}
	}
	return prices, nil
}

// PricesByYear returns each postcode's sale amounts grouped by year around pos.
func (s *PriceService) PricesByYear(ctx context.Context, pos models.Position) (models.YearResponse, error) {
	if s.cache != nil {
		cached, found, err := s.cache.GetYearPrices(ctx, pos)
		if err != nil {
			logger.GlobalLogger.Errorf("Year price cache read failed: lat=%f, long=%f, error=%v", pos.Lat, pos.Long, err)
		} else if found {
			logger.GlobalLogger.Debugf("Year price cache hit: lat=%f, long=%f", pos.Lat, pos.Long)
			return cached, nil
		}
	}

	nearby, sales, err := s.nearbySales(ctx, pos)
	if err != nil {
		return nil, err
	}
	prices := FormatPricesByYear(nearby, sales)

	if s.cache != nil {
		if err := s.cache.SetYearPrices(ctx, pos, prices, s.ttl); err != nil {
			logger.GlobalLogger.Errorf("Year price cache write failed: lat=%f, long=%f, error=%v", pos.Lat, pos.Long, err)
		}
	}
	return prices, nil
}

func (s *PriceService) nearbySales(ctx context.Context, pos models.Position) ([]postcodes.Postcode, []landregistry.Sale, error) {
	nearby, err := s.postcodes.Nearby(ctx, pos.Lat, pos.Long)
	if err != nil {
		return nil, nil, apperrors.NewUpstreamError("nearby postcodes", err)
	}
	nearby = FilterWithinRadius(pos, nearby, s.radius)
	if len(nearby) == 0 {
		logger.GlobalLogger.Debugf("No postcodes near lat=%f, long=%f", pos.Lat, pos.Long)
		return nearby, nil, nil
	}

	sales, err := s.sales.PricesPaid(ctx, postcodeList(nearby))
	if err != nil {
		return nil, nil, apperrors.NewUpstreamError("price paid query", err)
	}
	logger.GlobalLogger.Debugf("Found %d sales across %d postcodes near lat=%f, long=%f", len(sales), len(nearby), pos.Lat, pos.Long)
	return nearby, sales, nil
}
