package http

import (
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

type CreateSlotRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type UpdateSlotRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

type SlotResponse struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewSlotResponse(s *slot.Slot) SlotResponse {
	return SlotResponse{
		ID:          s.ID,
		TripID:      s.TripID,
		Date:        s.Date,
		Time:        s.Time,
		IsAvailable: s.IsAvailable,
		CreatedAt:   s.CreatedAt,
	}
}
