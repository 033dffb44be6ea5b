package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

type Handler struct {
	service slot.Service
}

func NewHandler(service slot.Service) *Handler {
	return &Handler{service: service}
}

// Create adds a slot to the trip in the path.
func (h *Handler) Create(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid trip id", err)
		return
	}

	var body CreateSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	s, err := h.service.AddSlot(c.Request.Context(), auth.CurrentActor(c), uri.ID, body.Date, body.Time)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSlotResponse(s))
}

func (h *Handler) List(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid trip id", err)
		return
	}

	slots, err := h.service.ListSlots(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = NewSlotResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Update blocks or unblocks a slot.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid slot id", err)
		return
	}

	var body UpdateSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	s, err := h.service.SetAvailability(c.Request.Context(), auth.CurrentActor(c), uri.ID, *body.IsAvailable)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSlotResponse(s))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid slot id", err)
		return
	}

	if err := h.service.RemoveSlot(c.Request.Context(), auth.CurrentActor(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
