package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-market-sync/internal/api/shared/errors"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondInvalidQuery responds with a bad request error for rejected listing queries
func respondInvalidQuery(c *gin.Context, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewInvalidQueryError(details...))
}

// respondServiceError responds with a service unavailable error
func respondServiceError(c *gin.Context, err error, message string) {
	logger.WarnCtx(c.Request.Context(), message, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusServiceUnavailable, apierrors.NewServiceError(message))
}

// respondInternalError responds with an internal server error
func respondInternalError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondError maps a domain error to its API error
func respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		respondInvalidQuery(c, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		respondServiceError(c, err, message)
	default:
		respondInternalError(c, err, message)
	}
}
