package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

func TestBuildListQuery(t *testing.T) {
	query, err := buildListQuery(Filter{
		GuideID:  "G1",
		Status:   StatusConfirmed,
		DateFrom: "2025-06-01",
		DateTo:   "2025-06-30",
		Page:     3,
		PageSize: 10,
	})
	require.NoError(t, err)

	sql, args, err := query.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "count(*) OVER() AS total_count")
	assert.Contains(t, sql, "JOIN public.trips t ON t.id = b.trip_id")
	assert.Contains(t, sql, "b.guide_id = $1")
	assert.Contains(t, sql, "b.status = $2")
	assert.Contains(t, sql, "b.slot_date >= $3")
	assert.Contains(t, sql, "b.slot_date <= $4")
	assert.Contains(t, sql, "ORDER BY b.slot_date DESC, b.slot_time DESC, b.id ASC")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
	assert.NotContains(t, sql, "tourist_id =")

	assert.Equal(t, []any{
		"G1",
		"confirmed",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}, args)
}

func TestBuildListQueryRejectsBadDate(t *testing.T) {
	_, err := buildListQuery(Filter{DateFrom: "June", Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, slot.ErrInvalidDate)
}
