package slot

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/apperror"
)

var (
	ErrDuplicateSlot    = apperror.New(http.StatusConflict, "trip already has a slot at this date and time")
	ErrSlotNotFound     = apperror.New(http.StatusNotFound, "slot not found")
	ErrSlotBooked       = apperror.New(http.StatusConflict, "slot is held by an active booking")
	ErrSlotInUse        = apperror.New(http.StatusConflict, "slot has booking history and cannot be removed")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidDate      = apperror.New(http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	ErrInvalidTime      = apperror.New(http.StatusBadRequest, "time must be formatted as HH:MM")
)

// Slot is one bookable (date, time) of a trip.
type Slot struct {
	ID          string
	TripID      string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	IsAvailable bool
	CreatedAt   time.Time
}
