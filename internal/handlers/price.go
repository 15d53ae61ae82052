// handlers/price.go
package handlers

import (
	"context"
	"net/http"

	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/internal/models"
	"houseprice-heatmap/internal/validators"
	"houseprice-heatmap/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PriceFinder interface {
	PricesByLocation(ctx context.Context, pos models.Position) (models.PriceResponse, error)
	PricesByYear(ctx context.Context, pos models.Position) (models.YearResponse, error)
}

type PriceHandler struct {
	prices    PriceFinder
	validator validators.PositionValidator
}

func NewPriceHandler(prices PriceFinder, validator validators.PositionValidator) *PriceHandler {
	return &PriceHandler{prices: prices, validator: validator}
}

// GetPrices returns {postcode: {lat, long, avg_price}} for the posted position.
func (h *PriceHandler) GetPrices(c *gin.Context) {
	pos, ok := h.bindPosition(c)
	if !ok {
		return
	}
	prices, err := h.prices.PricesByLocation(c.Request.Context(), pos)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

// GetPricesByYear returns {postcode: {lat, long, years: {"YYYY": [amounts]}}}.
func (h *PriceHandler) GetPricesByYear(c *gin.Context) {
	pos, ok := h.bindPosition(c)
	if !ok {
		return
	}
	prices, err := h.prices.PricesByYear(c.Request.Context(), pos)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

func (h *PriceHandler) bindPosition(c *gin.Context) (models.Position, bool) {
	var req models.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GlobalLogger.Debugf("Invalid position body: error=%v", err)
		_ = c.Error(apperrors.NewInvalidParametersError(err.Error()))
		return models.Position{}, false
	}
	pos, err := h.validator.Validate(&req)
	if err != nil {
		_ = c.Error(err)
		return models.Position{}, false
	}
	return pos, true
}
