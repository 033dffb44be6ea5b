package trip

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/pkg/apperror"
)

// memRepo mirrors the SQL search semantics over an in-memory slice.
type memRepo struct {
	mu    sync.Mutex
	trips []*Trip
	clock time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memRepo) Create(_ context.Context, t *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	t.ID = uuid.NewString()
	t.IsActive = true
	t.CreatedAt = m.clock
	t.UpdatedAt = m.clock
	cp := *t
	m.trips = append(m.trips, &cp)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Update(_ context.Context, t *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.trips {
		if cur.ID == t.ID {
			cp := *t
			m.trips[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *memRepo) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ID == id {
			t.IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

func (m *memRepo) Search(_ context.Context, f SearchFilter, limit, offset uint64) ([]*Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Trip
	q := strings.ToLower(strings.TrimSpace(f.TextQuery))
	for _, t := range m.trips {
		switch {
		case !t.IsActive:
		case f.City != nil && !strings.EqualFold(t.City, *f.City):
		case f.Type != nil && t.Type != *f.Type:
		case f.MinPrice != nil && t.Price < *f.MinPrice:
		case f.MaxPrice != nil && t.Price > *f.MaxPrice:
		case q != "" && !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.City), q):
		default:
			cp := *t
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch f.Sort {
		case SortPrice:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.ID < b.ID
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	})

	if offset >= uint64(len(out)) {
		return nil, nil
	}
	end := min(offset+limit, uint64(len(out)))
	return out[offset:end], nil
}

var (
	guide   = auth.Actor{ID: "guide-1", Role: auth.RoleGuide}
	other   = auth.Actor{ID: "guide-2", Role: auth.RoleGuide}
	admin   = auth.Actor{ID: "admin-1", Role: auth.RoleAdmin}
	tourist = auth.Actor{ID: "tourist-1", Role: auth.RoleTourist}
)

func validCreate(title, city string, price float64, typ Type) CreateRequest {
	return CreateRequest{
		Title:         title,
		Description:   "A walk through " + city,
		City:          city,
		Price:         price,
		Type:          typ,
		StartLocation: Location{Name: "Visitor Center"},
	}
}

func seed(t *testing.T, svc Service) {
	t.Helper()
	ctx := context.Background()
	fixtures := []CreateRequest{
		validCreate("Petra Day Tour", "Wadi Musa", 90, TypeHistorical),
		validCreate("Downtown Food Walk", "Amman", 40, TypeFood),
		validCreate("Citadel Sunset", "Amman", 60, TypeHistorical),
		validCreate("Dead Sea Float", "Dead Sea", 100, TypeRelaxation),
		validCreate("Wadi Rum Jeep", "Wadi Rum", 120, TypeAdventure),
		validCreate("Roman Theatre Stories", "Amman", 50, TypeCultural),
		validCreate("Dana Hike", "Dana", 75, TypeNature),
	}
	for _, req := range fixtures {
		_, err := svc.Create(ctx, guide, req)
		require.NoError(t, err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemRepo(), 20, 100)
	ctx := context.Background()

	_, err := svc.Create(ctx, tourist, validCreate("x", "Amman", 1, TypeFood))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	lat := 95.0
	bad := CreateRequest{
		Price:         -1,
		Type:          "Space",
		StartLocation: Location{Name: "", Lat: &lat},
	}
	_, err = svc.Create(ctx, guide, bad)
	require.ErrorIs(t, err, apperror.ErrValidation)

	var v *apperror.ValidationError
	require.ErrorAs(t, err, &v)
	fields := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{
		"title", "city", "price", "type", "start_location.name", "start_location", "start_location.lat",
	}, fields)
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	svc := NewService(newMemRepo(), 20, 100)
	ctx := context.Background()

	created, err := svc.Create(ctx, guide, validCreate("Petra Day Tour", "Wadi Musa", 90, TypeHistorical))
	require.NoError(t, err)

	newPrice := 95.0
	_, err = svc.Update(ctx, other, created.ID, UpdateRequest{Price: &newPrice})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := svc.Update(ctx, guide, created.ID, UpdateRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 95.0, updated.Price)

	negative := -5.0
	_, err = svc.Update(ctx, admin, created.ID, UpdateRequest{Price: &negative})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.ErrorIs(t, svc.Delete(ctx, other, created.ID), ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, guide, created.ID), ErrNotFound, "deleted trips are gone for writers")

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSearchFilters(t *testing.T) {
	svc := NewService(newMemRepo(), 20, 100)
	seed(t, svc)
	ctx := context.Background()

	res, err := svc.Search(ctx, SearchFilter{City: ptr("Amman")})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	for _, tr := range res.Items {
		assert.Equal(t, "Amman", tr.City)
	}

	res, err = svc.Search(ctx, SearchFilter{MinPrice: ptr(50.0), MaxPrice: ptr(100.0)})
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	for _, tr := range res.Items {
		assert.GreaterOrEqual(t, tr.Price, 50.0)
		assert.LessOrEqual(t, tr.Price, 100.0)
	}

	res, err = svc.Search(ctx, SearchFilter{City: ptr("Amman"), Type: ptr(TypeHistorical), MinPrice: ptr(50.0)})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Citadel Sunset", res.Items[0].Title)

	res, err = svc.Search(ctx, SearchFilter{TextQuery: "WADI"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2, "matches title or city case-insensitively")

	res, err = svc.Search(ctx, SearchFilter{Sort: SortPrice})
	require.NoError(t, err)
	for i := 1; i < len(res.Items); i++ {
		assert.LessOrEqual(t, res.Items[i-1].Price, res.Items[i].Price)
	}

	res, err = svc.Search(ctx, SearchFilter{Sort: SortOldest})
	require.NoError(t, err)
	assert.Equal(t, "Petra Day Tour", res.Items[0].Title)

	res, err = svc.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Dana Hike", res.Items[0].Title, "newest first by default")
}

func TestSearchRejectsBadInput(t *testing.T) {
	svc := NewService(newMemRepo(), 20, 100)
	ctx := context.Background()

	_, err := svc.Search(ctx, SearchFilter{Sort: "rating"})
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = svc.Search(ctx, SearchFilter{MinPrice: ptr(100.0), MaxPrice: ptr(50.0)})
	assert.ErrorIs(t, err, ErrInvalidPriceRange)

	_, err = svc.Search(ctx, SearchFilter{Type: ptr(Type("Space"))})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestSearchPaginationIsExhaustive(t *testing.T) {
	svc := NewService(newMemRepo(), 20, 100)
	seed(t, svc)
	ctx := context.Background()

	for _, sortBy := range []Sort{SortNewest, SortOldest, SortPrice} {
		for pageSize := 1; pageSize <= 8; pageSize++ {
			t.Run(fmt.Sprintf("%s/%d", sortBy, pageSize), func(t *testing.T) {
				seen := make(map[string]int)
				page := 1
				for {
					res, err := svc.Search(ctx, SearchFilter{Sort: sortBy, Page: page, PageSize: pageSize})
					require.NoError(t, err)
					for _, tr := range res.Items {
						seen[tr.ID]++
					}
					if !res.HasNextPage {
						break
					}
					page++
				}
				assert.Len(t, seen, 7)
				for id, n := range seen {
					assert.Equal(t, 1, n, "trip %s returned more than once", id)
				}
			})
		}
	}
}

func TestSearchPageSizeClamp(t *testing.T) {
	svc := NewService(newMemRepo(), 3, 5)
	seed(t, svc)
	ctx := context.Background()

	res, err := svc.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
	assert.True(t, res.HasNextPage)

	res, err = svc.Search(ctx, SearchFilter{PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, res.PageSize)

	res, err = svc.Search(ctx, SearchFilter{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.False(t, res.HasNextPage)
}
