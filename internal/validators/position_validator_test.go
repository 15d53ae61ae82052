package validators

import (
	"errors"
	"testing"

	apperrors "houseprice-heatmap/internal/errors"
	"houseprice-heatmap/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestValidatePosition(t *testing.T) {
	v := NewPositionValidator()

	pos, err := v.Validate(&models.PositionRequest{Lat: ptr(0), Long: ptr(0)})
	if err != nil || pos != (models.Position{}) {
		t.Errorf("zero position: got %+v, %v", pos, err)
	}
	pos, err = v.Validate(&models.PositionRequest{Lat: ptr(50.84), Long: ptr(-0.13)})
	if err != nil || pos.Lat != 50.84 || pos.Long != -0.13 {
		t.Errorf("brighton: got %+v, %v", pos, err)
	}

	bad := map[string]*models.PositionRequest{
		"nil":          nil,
		"missing lat":  {Long: ptr(1)},
		"missing long": {Lat: ptr(1)},
		"lat range":    {Lat: ptr(91), Long: ptr(0)},
		"long range":   {Lat: ptr(0), Long: ptr(-180.5)},
	}
	for name, req := range bad {
		if _, err := v.Validate(req); !errors.Is(err, apperrors.ErrInvalidParameters) {
			t.Errorf("%s: got %v, want ErrInvalidParameters", name, err)
		}
	}
}
