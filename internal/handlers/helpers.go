package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadcrm/internal/apperr"
	"leadcrm/internal/middleware"
	"leadcrm/internal/models"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// handleError maps a service error to its status once. notFound is the
// detail used for apperr.ErrNotFound; anything unrecognized is logged and
// answered with a bare 500.
func handleError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	switch {
	case err == nil:
		return
	case errors.Is(err, apperr.ErrNotFound):
		abortDetail(c, http.StatusNotFound, notFound)
	case errors.Is(err, apperr.ErrForbidden):
		abortDetail(c, http.StatusForbidden, "Not enough permissions")
	case errors.Is(err, apperr.ErrUnauthorized):
		abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, apperr.ErrInvalid):
		abortDetail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		abortDetail(c, http.StatusConflict, "Conflict")
	default:
		_ = c.Error(err)
		middleware.Logger(c, log).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		abortDetail(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

// currentIdentity reads the caller set by the auth middleware. A route
// mounted without it answers 401.
func currentIdentity(c *gin.Context) (models.Identity, bool) {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "Not authenticated")
	}
	return who, ok
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortDetail(c, http.StatusBadRequest, "Invalid lead id")
		return 0, false
	}
	return id, true
}
