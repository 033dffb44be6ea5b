package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/tour-booking-backend/internal/schedule"
)

// CalendarReader is satisfied by *schedule.Index.
type CalendarReader interface {
	Calendar(ctx context.Context, guideID, from, to string) ([]schedule.Entry, error)
}

type ScheduleQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type EntryResponse struct {
	TripID      string `json:"trip_id"`
	SlotID      string `json:"slot_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
}

type Handler struct {
	reader CalendarReader
}

func NewHandler(reader CalendarReader) *Handler {
	return &Handler{reader: reader}
}

// Get returns a guide's slots across all of their trips.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid guide id", err)
		return
	}

	var q ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	entries, err := h.reader.Calendar(c.Request.Context(), uri.ID, q.From, q.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EntryResponse, len(entries))
	for i, e := range entries {
		items[i] = EntryResponse{
			TripID:      e.TripID,
			SlotID:      e.SlotID,
			Date:        e.Date,
			Time:        e.Time,
			IsAvailable: e.IsAvailable,
		}
	}
	c.JSON(http.StatusOK, gin.H{"guide_id": uri.ID, "items": items})
}
