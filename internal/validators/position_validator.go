package validators

import (
	"math"

	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/internal/models"
)

type positionValidator struct{}

func NewPositionValidator() PositionValidator {
	return &positionValidator{}
}

// Validate requires both coordinates, finite and within WGS84 bounds.
func (v *positionValidator) Validate(req *models.PositionRequest) (models.Position, error) {
	if req == nil || req.Lat == nil || req.Long == nil {
		return models.Position{}, apperrors.NewInvalidParametersError("lat and long are required")
	}
	lat, long := *req.Lat, *req.Long
	if math.IsNaN(lat) || math.IsNaN(long) || math.IsInf(lat, 0) || math.IsInf(long, 0) {
		return models.Position{}, apperrors.NewInvalidParametersError("lat and long must be finite")
	}
	if lat < -90 || lat > 90 {
		return models.Position{}, apperrors.NewInvalidParametersError("lat must be between -90 and 90")
	}
	if long < -180 || long > 180 {
		return models.Position{}, apperrors.NewInvalidParametersError("long must be between -180 and 180")
	}
	return models.Position{Lat: lat, Long: long}, nil
}
