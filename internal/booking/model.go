package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrSlotNotFound      = apperror.New(http.StatusNotFound, "trip has no slot at this date and time")
	ErrSlotTaken         = apperror.New(http.StatusConflict, "guide is not available at this date and time")
	ErrIllegalTransition = apperror.New(http.StatusConflict, "booking cannot move to the requested status")
	ErrNotAuthorized     = apperror.New(http.StatusForbidden, "not authorized for this booking")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrContactRequired   = apperror.New(http.StatusBadRequest, "contact phone or email is required")
	ErrInvalidDateRange  = apperror.New(http.StatusBadRequest, "date_from must not be after date_to")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// validTransitions lists the statuses each status may move to.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCompleted, StatusCanceled},
	StatusCompleted: {},
	StatusCanceled:  {},
}

func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsActive reports whether a booking in this status holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Contact struct {
	Phone string
	Email string
}

// Booking is a tourist's claim on one trip slot.
type Booking struct {
	ID        string
	TouristID string
	TripID    string
	TripTitle string
	GuideID   string
	SlotID    string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Status    Status
	Contact   Contact
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filter struct {
	// Visibility scope, set by the service from the actor.
	TouristID string
	GuideID   string

	TripID   string
	Status   Status
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}
