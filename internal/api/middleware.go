package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
)

// RequestLogger writes one structured log line per request.
// Actor fields are only known after auth.AuthRequired has run further down the chain.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if actor := auth.CurrentActor(c); actor.ID != "" {
			attrs = append(attrs, "actor_id", actor.ID, "actor_role", actor.Role)
		}

		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "request failed", attrs...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "request rejected", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "request handled", attrs...)
		}
	}
}
