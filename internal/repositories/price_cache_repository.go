package repositories

import (
	"context"
	"time"

	"houseprice-heatmap/internal/models"
	"houseprice-heatmap/pkg/cache"
	"houseprice-heatmap/pkg/logger"
	"houseprice-heatmap/pkg/metrics"
)

type priceCache struct {
	store cache.Store
}

func NewPriceCache(store cache.Store) PriceCache {
	return &priceCache{store: store}
}

func (c *priceCache) GetPrices(ctx context.Context, pos models.Position) (models.PriceResponse, bool, error) {
	var prices models.PriceResponse
	found, err := c.get(ctx, cache.FlatPricesKey(pos.Lat, pos.Long), &prices)
	if err != nil || !found {
		return nil, false, err
	}
	return prices, true, nil
}

func (c *priceCache) SetPrices(ctx context.Context, pos models.Position, prices models.PriceResponse, expiration time.Duration) error {
	return c.store.Set(ctx, cache.FlatPricesKey(pos.Lat, pos.Long), prices, expiration)
}

func (c *priceCache) GetYearPrices(ctx context.Context, pos models.Position) (models.YearResponse, bool, error) {
	var prices models.YearResponse
	found, err := c.get(ctx, cache.YearPricesKey(pos.Lat, pos.Long), &prices)
	if err != nil || !found {
		return nil, false, err
	}
	return prices, true, nil
}

func (c *priceCache) SetYearPrices(ctx context.Context, pos models.Position, prices models.YearResponse, expiration time.Duration) error {
	return c.store.Set(ctx, cache.YearPricesKey(pos.Lat, pos.Long), prices, expiration)
}

func (c *priceCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// get counts hits and misses. A transport failure is returned and counts as
// neither; an entry that cannot be decoded is evicted and reads as a miss.
func (c *priceCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	found, err := c.store.Get(ctx, key, dest)
	if err != nil {
		if cache.IsRetryable(err) {
			return false, err
		}
		logger.GlobalLogger.Errorf("Evicting unreadable cache entry: key=%s, error=%v", key, err)
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			logger.GlobalLogger.Errorf("Failed to evict cache entry: key=%s, error=%v", key, delErr)
		}
		found = false
	}
	if found {
		metrics.CacheHitsTotal.Inc()
	} else {
		metrics.CacheMissesTotal.Inc()
	}
	return found, nil
}
