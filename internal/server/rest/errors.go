package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// fail writes the response for a service error. Unexpected errors are
// logged and reported as a bare 500.
func (s *Server) fail(c *gin.Context, err error) {
	status, detail := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	abortDetail(c, status, detail)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidCode):
		return http.StatusBadRequest, "Invalid code"
	case errors.Is(err, services.ErrDelivery):
		return http.StatusBadGateway, "code delivery failed"
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusBadGateway, "upstream service unavailable"
	case errors.Is(err, services.ErrNoData):
		return http.StatusUnprocessableEntity, "no data supplied"
	case errors.Is(err, services.ErrUsernameTaken):
		return http.StatusUnprocessableEntity, "username already taken"
	case errors.Is(err, services.ErrInvalidKind):
		return http.StatusBadRequest, "invalid arg, allowed values: weight, water, steps"
	case errors.Is(err, services.ErrSelfFollow):
		return http.StatusBadRequest, "cannot follow yourself"
	case errors.Is(err, services.ErrAlreadyFollowing):
		return http.StatusBadRequest, "already following this user"
	case errors.Is(err, services.ErrNotFollowing):
		return http.StatusNotFound, "not following this user"
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "could not validate credentials"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
