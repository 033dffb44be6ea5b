package http

import (
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
)

// SearchTripsRequest defines query parameters for trip discovery.
type SearchTripsRequest struct {
	request.ListParams
	City     string   `form:"city"`
	Type     string   `form:"type"`
	MinPrice *float64 `form:"min_price"`
	MaxPrice *float64 `form:"max_price"`
	Query    string   `form:"q"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=price newest oldest"`
}

// Filter converts the query into a service filter. Empty strings mean "any".
func (r *SearchTripsRequest) Filter() trip.SearchFilter {
	f := trip.SearchFilter{
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		TextQuery: r.Query,
		Sort:      trip.Sort(r.Sort),
		Page:      r.Page,
		PageSize:  r.PageSize,
	}
	if r.City != "" {
		city := r.City
		f.City = &city
	}
	if r.Type != "" {
		typ := trip.Type(r.Type)
		f.Type = &typ
	}
	return f
}

type LocationBody struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

func (l LocationBody) toModel() trip.Location {
	return trip.Location{Name: l.Name, Lat: l.Lat, Lng: l.Lng}
}

func toModelPath(path []LocationBody) []trip.Location {
	out := make([]trip.Location, len(path))
	for i, l := range path {
		out[i] = l.toModel()
	}
	return out
}

type CreateTripRequest struct {
	Title         string         `json:"title" binding:"required"`
	Description   string         `json:"description"`
	City          string         `json:"city" binding:"required"`
	Price         float64        `json:"price"`
	Type          string         `json:"type" binding:"required"`
	StartLocation LocationBody   `json:"start_location"`
	Path          []LocationBody `json:"path"`
}

type UpdateTripRequest struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	City          *string         `json:"city"`
	Price         *float64        `json:"price"`
	Type          *string         `json:"type"`
	StartLocation *LocationBody   `json:"start_location"`
	Path          *[]LocationBody `json:"path"`
}

func (r *UpdateTripRequest) toModel() trip.UpdateRequest {
	req := trip.UpdateRequest{
		Title:       r.Title,
		Description: r.Description,
		City:        r.City,
		Price:       r.Price,
	}
	if r.Type != nil {
		typ := trip.Type(*r.Type)
		req.Type = &typ
	}
	if r.StartLocation != nil {
		loc := r.StartLocation.toModel()
		req.StartLocation = &loc
	}
	if r.Path != nil {
		path := toModelPath(*r.Path)
		req.Path = &path
	}
	return req
}

type TripResponse struct {
	ID             string             `json:"id"`
	GuideID        string             `json:"guide_id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	City           string             `json:"city"`
	Price          float64            `json:"price"`
	Type           string             `json:"type"`
	StartLocation  trip.Location      `json:"start_location"`
	Path           []trip.Location    `json:"path"`
	IsActive       bool               `json:"is_active"`
	AvailableSlots []trip.SlotSummary `json:"available_slots,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func NewTripResponse(t *trip.Trip) TripResponse {
	path := t.Path
	if path == nil {
		path = []trip.Location{}
	}
	return TripResponse{
		ID:             t.ID,
		GuideID:        t.GuideID,
		Title:          t.Title,
		Description:    t.Description,
		City:           t.City,
		Price:          t.Price,
		Type:           string(t.Type),
		StartLocation:  t.StartLocation,
		Path:           path,
		IsActive:       t.IsActive,
		AvailableSlots: t.AvailableSlots,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
