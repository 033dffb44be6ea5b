package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// Slots are listed under their trip and managed by their own id.
	g.GET("/trips/:id/slots", h.List)
	g.POST("/trips/:id/slots", authMiddleware, h.Create)

	group := g.Group("/slots", authMiddleware)
	{
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}
