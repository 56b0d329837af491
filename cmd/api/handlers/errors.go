package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roast-board/cmd/api/dto"
	"roast-board/logger"
	"roast-board/models"
)

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, models.ErrValidation):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, models.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrAlreadyVoted):
		status, code = http.StatusConflict, "already_voted"
	case errors.Is(err, models.ErrGenerationFailed):
		status, code = http.StatusBadGateway, "generation_failed"
	case errors.Is(err, models.ErrStoreUnavailable):
		status, code = http.StatusServiceUnavailable, "store_unavailable"
	case errors.Is(err, models.ErrUpstreamTimeout):
		status, code = http.StatusGatewayTimeout, "upstream_timeout"
	}

	resp := dto.ErrorResponseDTO{Error: code, Detail: err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Errors
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields("request failed", logger.Fields{
			"path":   c.FullPath(),
			"status": status,
			"error":  err.Error(),
		})
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request", Detail: err.Error()})
}
