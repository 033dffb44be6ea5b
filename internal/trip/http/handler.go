package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
)

type Handler struct {
	service trip.Service
}

func NewHandler(service trip.Service) *Handler {
	return &Handler{service: service}
}

// Search lists active trips matching the query, one page at a time.
func (h *Handler) Search(c *gin.Context) {
	var req SearchTripsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TripResponse, len(res.Items))
	for i, t := range res.Items {
		items[i] = NewTripResponse(t)
	}
	c.JSON(http.StatusOK, response.NewCursorlessPage(items, res.Page, res.PageSize, res.HasNextPage))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid trip id", err)
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTripResponse(t))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateTripRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), auth.CurrentActor(c), trip.CreateRequest{
		Title:         body.Title,
		Description:   body.Description,
		City:          body.City,
		Price:         body.Price,
		Type:          trip.Type(body.Type),
		StartLocation: body.StartLocation.toModel(),
		Path:          toModelPath(body.Path),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTripResponse(t))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid trip id", err)
		return
	}

	var body UpdateTripRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Update(c.Request.Context(), auth.CurrentActor(c), uri.ID, body.toModel())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTripResponse(t))
}

// Delete deactivates the trip. Existing slots and bookings are untouched.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid trip id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.CurrentActor(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
