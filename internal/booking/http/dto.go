package http

import (
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/booking"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	TripID   string `form:"trip_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed completed canceled"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type CreateBookingRequest struct {
	TripID       string `json:"trip_id" binding:"required,uuid"`
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

type UpdateBookingRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed completed canceled"`
}

type TripTag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type BookingResponse struct {
	ID           string    `json:"id"`
	TouristID    string    `json:"tourist_id"`
	GuideID      string    `json:"guide_id"`
	Trip         TripTag   `json:"trip"`
	SlotID       string    `json:"slot_id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		TouristID:    b.TouristID,
		GuideID:      b.GuideID,
		Trip:         TripTag{ID: b.TripID, Title: b.TripTitle},
		SlotID:       b.SlotID,
		Date:         b.Date,
		Time:         b.Time,
		Status:       string(b.Status),
		ContactPhone: b.Contact.Phone,
		ContactEmail: b.Contact.Email,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
