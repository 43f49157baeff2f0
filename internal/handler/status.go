package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlbertPrograms/nodecs-backend/internal/response"
	"github.com/AlbertPrograms/nodecs-backend/internal/service"
)

// failFromErr translates service-layer sentinel errors into HTTP status
// codes and response error codes.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrBadRequest):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrUpstream):
		response.Fail(c, http.StatusBadGateway, response.ErrExecutorUnavailable)
	case errors.Is(err, service.ErrTimedOut):
		response.Fail(c, http.StatusGatewayTimeout, response.ErrExecutorTimeout)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
