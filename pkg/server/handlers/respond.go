package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/resolver"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/types"
)

// respondError maps domain errors onto HTTP status codes. Anything
// unrecognized is an internal error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, legame.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "entity_not_found", Message: err.Error()})
	case errors.Is(err, legame.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "session_not_found", Message: err.Error()})
	case errors.Is(err, resolver.ErrClusterNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "cluster_not_found", Message: err.Error()})
	case errors.Is(err, resolver.ErrSameCluster):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
	case errors.Is(err, types.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
	case errors.Is(err, legame.ErrClientClosed):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "client_closed", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}

// badRequest answers a request that failed binding or validation.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
}
