package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/trips")

	// === Public Routes ===
	group.GET("/search", h.Search)
	group.GET("/:id", h.Get)

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.POST("", auth.RequireRole(auth.RoleGuide), h.Create)
		authed.PATCH("/:id", h.Update)
		authed.DELETE("/:id", h.Delete)
	}
}
