package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsSortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_more.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_init.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md":    {Data: []byte("notes")},
	}

	got, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "001_init.sql", got[0].Name)
	assert.Equal(t, "002_more.sql", got[1].Name)
	assert.Equal(t, "SELECT 2;", got[1].Content)
}

func TestEmbeddedSchemaHasBookingBackstop(t *testing.T) {
	got, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	schema := got[0].Content
	assert.Contains(t, schema, "trip_slots_trip_instant_key UNIQUE (trip_id, slot_date, slot_time)")
	assert.Contains(t, schema, "bookings_guide_instant_active_key")
	assert.Contains(t, schema, "WHERE status IN ('pending', 'confirmed')")
}
