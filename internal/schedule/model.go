package schedule

import (
	"net/http"

	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/apperror"
)

var ErrInvalidRange = apperror.New(http.StatusBadRequest, "from must not be after to")

// Entry is one slot on a guide's calendar, across all of the guide's trips.
type Entry struct {
	TripID      string `json:"trip_id"`
	SlotID      string `json:"slot_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
	// ActiveBookingID is set when a pending or confirmed booking holds the slot.
	ActiveBookingID string `json:"active_booking_id,omitempty"`
}
