package repositories

import (
	"context"
	"time"

	"houseprice-heatmap/internal/models"
)

// PriceCache stores formatted price responses by position. A miss is
// (nil, false, nil).
type PriceCache interface {
	GetPrices(ctx context.Context, pos models.Position) (models.PriceResponse, bool, error)
	SetPrices(ctx context.Context, pos models.Position, prices models.PriceResponse, expiration time.Duration) error
	GetYearPrices(ctx context.Context, pos models.Position) (models.YearResponse, bool, error)
	SetYearPrices(ctx context.Context, pos models.Position, prices models.YearResponse, expiration time.Duration) error
	Ping(ctx context.Context) error
}
