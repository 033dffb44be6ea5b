package trip

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "trip not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidSort       = apperror.New(http.StatusBadRequest, "sort must be one of price, newest, oldest")
	ErrInvalidPriceRange = apperror.New(http.StatusBadRequest, "min_price must not exceed max_price")
	ErrInvalidType       = apperror.New(http.StatusBadRequest, "type is not a known trip type")
)

// Type is the trip category.
type Type string

const (
	TypeAdventure  Type = "Adventure"
	TypeCultural   Type = "Cultural"
	TypeFood       Type = "Food"
	TypeHistorical Type = "Historical"
	TypeNature     Type = "Nature"
	TypeRelaxation Type = "Relaxation"
	TypeGroup      Type = "Group"
)

var ValidTypes = []Type{
	TypeAdventure, TypeCultural, TypeFood, TypeHistorical, TypeNature, TypeRelaxation, TypeGroup,
}

func (t Type) Valid() bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Location is a named point on a trip path. Coordinates are optional.
type Location struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// SlotSummary is an available slot as shown next to a search result.
type SlotSummary struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// Trip is a bookable product owned by one guide.
type Trip struct {
	ID            string
	GuideID       string
	Title         string
	Description   string
	City          string
	Price         float64
	Type          Type
	StartLocation Location
	Path          []Location
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated by Search only.
	AvailableSlots []SlotSummary
}

// Sort orders search results.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortPrice  Sort = "price"
)

// SearchFilter holds the discovery query. Nil fields are not filtered on.
type SearchFilter struct {
	City      *string
	Type      *Type
	MinPrice  *float64
	MaxPrice  *float64
	TextQuery string
	Sort      Sort
	Page      int
	PageSize  int
}

// SearchResult is one page of matching trips.
type SearchResult struct {
	Items       []*Trip
	Page        int
	PageSize    int
	HasNextPage bool
}
