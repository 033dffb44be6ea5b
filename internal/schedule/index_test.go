package schedule

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

type stubRepo struct {
	entries []Entry
	calls   int
}

func (s *stubRepo) ListForGuide(_ context.Context, guideID string) ([]Entry, error) {
	s.calls++
	if guideID != "g1" {
		return []Entry{}, nil
	}
	return s.entries, nil
}

func newTestIndex(repo Repository) *Index {
	return NewIndex(repo, nil, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSlotsForGuideSpansTrips(t *testing.T) {
	repo := &stubRepo{entries: []Entry{
		{TripID: "t1", SlotID: "s1", Date: "2025-06-15", Time: "09:00", IsAvailable: false, ActiveBookingID: "b1"},
		{TripID: "t2", SlotID: "s2", Date: "2025-06-15", Time: "09:00", IsAvailable: true},
	}}
	idx := newTestIndex(repo)

	got, err := idx.SlotsForGuide(context.Background(), "g1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = idx.SlotsForGuide(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedWithoutRedisReadsLive(t *testing.T) {
	repo := &stubRepo{entries: []Entry{{TripID: "t1", SlotID: "s1", Date: "2025-06-15", Time: "09:00", IsAvailable: true}}}
	idx := newTestIndex(repo)
	ctx := context.Background()

	_, err := idx.CachedSlotsForGuide(ctx, "g1")
	require.NoError(t, err)
	_, err = idx.CachedSlotsForGuide(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.NoError(t, idx.Invalidate(ctx, "g1"))
}

func TestCalendarBounds(t *testing.T) {
	repo := &stubRepo{entries: []Entry{
		{TripID: "t1", SlotID: "s1", Date: "2025-06-14", Time: "09:00"},
		{TripID: "t1", SlotID: "s2", Date: "2025-06-15", Time: "09:00"},
		{TripID: "t2", SlotID: "s3", Date: "2025-06-16", Time: "09:00"},
	}}
	idx := newTestIndex(repo)
	ctx := context.Background()

	got, err := idx.Calendar(ctx, "g1", "2025-06-15", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3"}, slotIDs(got))

	got, err = idx.Calendar(ctx, "g1", "", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, slotIDs(got))

	got, err = idx.Calendar(ctx, "g1", "2025-06-15", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, slotIDs(got))

	_, err = idx.Calendar(ctx, "g1", "2025-06-16", "2025-06-15")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = idx.Calendar(ctx, "g1", "June 15", "")
	assert.ErrorIs(t, err, slot.ErrInvalidDate)
}

func TestListForGuideQuery(t *testing.T) {
	sql, args, err := buildListForGuideQuery("g1").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN public.trips t ON t.id = s.trip_id")
	assert.Contains(t, sql, "LEFT JOIN public.bookings b ON b.slot_id = s.id AND b.status IN ('pending', 'confirmed')")
	assert.Contains(t, sql, "WHERE t.guide_id = $1")
	assert.NotContains(t, sql, "is_active", "slots of deactivated trips stay on the calendar")
	assert.Equal(t, []any{"g1"}, args)
}

func slotIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.SlotID
	}
	return ids
}
