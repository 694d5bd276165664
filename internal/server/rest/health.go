package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

func (s *Server) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "alive"})
}

func (s *Server) readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "error"})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ready"})
}
