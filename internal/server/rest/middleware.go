package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/server/auth"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// requireToken resolves the bearer token as kind and stores the user and
// the raw token on the gin context.
func (s *Server) requireToken(kind auth.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			abortDetail(c, http.StatusUnauthorized, "not authenticated")
			return
		}

		user, err := s.auth.Resolve(c.Request.Context(), token, kind)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				abortDetail(c, http.StatusUnauthorized, "token expired")
			case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, services.ErrUserNotFound):
				s.logger.Debug(c.Request.Context(), "token rejected", "kind", kind, "error", err)
				abortDetail(c, http.StatusUnauthorized, "could not validate credentials")
			default:
				s.fail(c, err)
			}
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) <= len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	return token, token != ""
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}
