package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuildSearchQueryDefaults(t *testing.T) {
	sql, args, err := buildSearchQuery(SearchFilter{}, 21, 0).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE t.is_active = $1")
	assert.Contains(t, sql, "ORDER BY t.created_at DESC, t.id DESC")
	assert.Contains(t, sql, "LIMIT 21 OFFSET 0")
	assert.Contains(t, sql, "AS available_slots")
	assert.Equal(t, []any{true}, args)
}

func TestBuildSearchQueryAllFilters(t *testing.T) {
	filter := SearchFilter{
		City:      ptr("Amman"),
		Type:      ptr(TypeHistorical),
		MinPrice:  ptr(50.0),
		MaxPrice:  ptr(100.0),
		TextQuery: " 50%_off ",
		Sort:      SortPrice,
	}

	sql, args, err := buildSearchQuery(filter, 11, 20).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "lower(t.city) = lower($2)")
	assert.Contains(t, sql, "t.trip_type = $3")
	assert.Contains(t, sql, "t.price >= $4")
	assert.Contains(t, sql, "t.price <= $5")
	assert.Contains(t, sql, "(t.title ILIKE $6 OR t.description ILIKE $7 OR t.city ILIKE $8)")
	assert.Contains(t, sql, "ORDER BY t.price ASC, t.id ASC")
	assert.Contains(t, sql, "LIMIT 11 OFFSET 20")

	pattern := `%50\%\_off%`
	assert.Equal(t, []any{true, "Amman", "Historical", 50.0, 100.0, pattern, pattern, pattern}, args)
}

func TestBuildSearchQueryOldest(t *testing.T) {
	sql, _, err := buildSearchQuery(SearchFilter{Sort: SortOldest}, 5, 5).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY t.created_at ASC, t.id ASC")
}
