package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking lifecycle under /bookings. Every route
// needs an identity; visibility is decided per booking by the service.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings", authMiddleware)
	bookings.GET("", h.List)
	bookings.POST("", h.Create)
	bookings.GET("/:id", h.Get)
	bookings.PATCH("/:id", h.Update)
}
