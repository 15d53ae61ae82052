package validators

import (
	"houseprice-heatmap/internal/models"
)

type PositionValidator interface {
	Validate(req *models.PositionRequest) (models.Position, error)
}
