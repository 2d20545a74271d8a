package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"solar-battery-sim/internal/api/models"
	"solar-battery-sim/internal/data"
	"solar-battery-sim/internal/metrics"
	"solar-battery-sim/internal/model"
)

// classify maps an error to its HTTP status, error code and metric outcome.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, model.ErrMisalignedSeries):
		return http.StatusBadRequest, "MISALIGNED_SERIES", metrics.OutcomeInvalid
	case errors.Is(err, model.ErrInvalidConfig):
		return http.StatusBadRequest, "INVALID_CONFIG", metrics.OutcomeInvalid
	case errors.Is(err, model.ErrInvalidSeries), errors.Is(err, data.ErrColumnNotFound):
		return http.StatusBadRequest, "INVALID_SERIES", metrics.OutcomeInvalid
	case errors.Is(err, model.ErrDegenerateInput):
		return http.StatusUnprocessableEntity, "DEGENERATE_INPUT", metrics.OutcomeDegenerate
	default:
		return http.StatusInternalServerError, "SIMULATION_ERROR", metrics.OutcomeError
	}
}

func respondError(c *gin.Context, status int, code string, err error, details map[string]interface{}) {
	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
			Details: details,
		},
	})
}

func respondClassified(c *gin.Context, err error) {
	status, code, _ := classify(err)
	respondError(c, status, code, err, nil)
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err, nil)
}
