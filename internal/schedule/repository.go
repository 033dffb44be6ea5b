package schedule

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/tour-booking-backend/internal/db"
)

type Repository interface {
	// ListForGuide returns every slot of every trip the guide owns, inactive
	// trips included, ordered by date, time and trip id.
	ListForGuide(ctx context.Context, guideID string) ([]Entry, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func buildListForGuideQuery(guideID string) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"s.trip_id",
		"s.id",
		"to_char(s.slot_date, 'YYYY-MM-DD')",
		"s.slot_time",
		"s.is_available",
		"COALESCE(b.id::text, '')",
	).
		From("public.trip_slots s").
		Join("public.trips t ON t.id = s.trip_id").
		LeftJoin("public.bookings b ON b.slot_id = s.id AND b.status IN ('pending', 'confirmed')").
		Where(squirrel.Eq{"t.guide_id": guideID}).
		OrderBy("s.slot_date ASC", "s.slot_time ASC", "s.trip_id ASC")
}

func (r *pgxRepository) ListForGuide(ctx context.Context, guideID string) ([]Entry, error) {
	query, args, err := buildListForGuideQuery(guideID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build guide schedule query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list guide schedule failed: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TripID, &e.SlotID, &e.Date, &e.Time, &e.IsAvailable, &e.ActiveBookingID); err != nil {
			return nil, fmt.Errorf("scan schedule entry failed: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guide schedule failed: %w", err)
	}
	return entries, nil
}
