package trip

import (
	"context"
	"strconv"
	"strings"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/apperror"
)

type CreateRequest struct {
	Title         string
	Description   string
	City          string
	Price         float64
	Type          Type
	StartLocation Location
	Path          []Location
}

type UpdateRequest struct {
	Title         *string
	Description   *string
	City          *string
	Price         *float64
	Type          *Type
	StartLocation *Location
	Path          *[]Location
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Trip, error)
	GetByID(ctx context.Context, id string) (*Trip, error)
	Update(ctx context.Context, actor auth.Actor, id string, req UpdateRequest) (*Trip, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
	Search(ctx context.Context, filter SearchFilter) (*SearchResult, error)
}

type service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

func NewService(repo Repository, defaultPageSize, maxPageSize int) Service {
	return &service{
		repo:            repo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// validateTrip checks the field rules of a trip record.
func validateTrip(t *Trip) error {
	var v apperror.ValidationError

	if strings.TrimSpace(t.Title) == "" {
		v.Add("title", "is required")
	}
	if strings.TrimSpace(t.City) == "" {
		v.Add("city", "is required")
	}
	if t.Price < 0 {
		v.Add("price", "must not be negative")
	}
	if !t.Type.Valid() {
		v.Add("type", "is not a known trip type")
	}
	validateLocation(&v, "start_location", t.StartLocation)
	for i, loc := range t.Path {
		validateLocation(&v, "path["+strconv.Itoa(i)+"]", loc)
	}

	return v.OrNil()
}

func validateLocation(v *apperror.ValidationError, field string, loc Location) {
	if strings.TrimSpace(loc.Name) == "" {
		v.Add(field+".name", "is required")
	}
	if (loc.Lat == nil) != (loc.Lng == nil) {
		v.Add(field, "lat and lng must be given together")
	}
	if loc.Lat != nil && (*loc.Lat < -90 || *loc.Lat > 90) {
		v.Add(field+".lat", "must be between -90 and 90")
	}
	if loc.Lng != nil && (*loc.Lng < -180 || *loc.Lng > 180) {
		v.Add(field+".lng", "must be between -180 and 180")
	}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Trip, error) {
	if !actor.IsGuide() {
		return nil, ErrPermissionDenied
	}

	t := &Trip{
		GuideID:       actor.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		City:          strings.TrimSpace(req.City),
		Price:         req.Price,
		Type:          req.Type,
		StartLocation: req.StartLocation,
		Path:          req.Path,
	}
	if err := validateTrip(t); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Trip, error) {
	return s.repo.GetByID(ctx, id)
}

// loadManaged returns an active trip the actor is allowed to change.
func (s *service) loadManaged(ctx context.Context, actor auth.Actor, id string) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrNotFound
	}
	if !actor.CanManage(t.GuideID) {
		return nil, ErrPermissionDenied
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id string, req UpdateRequest) (*Trip, error) {
	t, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.City != nil {
		t.City = strings.TrimSpace(*req.City)
	}
	if req.Price != nil {
		t.Price = *req.Price
	}
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.StartLocation != nil {
		t.StartLocation = *req.StartLocation
	}
	if req.Path != nil {
		t.Path = *req.Path
	}

	if err := validateTrip(t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

// Search serves one page of discovery results. It asks the repository for
// one extra row to learn whether a following page exists.
func (s *service) Search(ctx context.Context, filter SearchFilter) (*SearchResult, error) {
	switch filter.Sort {
	case "":
		filter.Sort = SortNewest
	case SortNewest, SortOldest, SortPrice:
	default:
		return nil, ErrInvalidSort
	}

	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		zero := 0.0
		filter.MinPrice = &zero
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, ErrInvalidPriceRange
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, ErrInvalidType
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = s.defaultPageSize
	}
	if filter.PageSize > s.maxPageSize {
		filter.PageSize = s.maxPageSize
	}

	offset := uint64(filter.Page-1) * uint64(filter.PageSize)
	trips, err := s.repo.Search(ctx, filter, uint64(filter.PageSize)+1, offset)
	if err != nil {
		return nil, err
	}

	hasNext := len(trips) > filter.PageSize
	if hasNext {
		trips = trips[:filter.PageSize]
	}

	return &SearchResult{
		Items:       trips,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		HasNextPage: hasNext,
	}, nil
}
