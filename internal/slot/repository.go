package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/tour-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	// LockByID is GetByID with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id string) (*Slot, error)
	// LockByInstant finds and row-locks the slot of tripID at (date, time).
	LockByInstant(ctx context.Context, tripID, date, tm string) (*Slot, error)
	ListByTrip(ctx context.Context, tripID string) ([]*Slot, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	// HasActiveBooking reports whether a pending or confirmed booking holds the slot.
	HasActiveBooking(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var slotColumns = []string{"id", "trip_id", "slot_date", "slot_time", "is_available", "created_at"}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var date time.Time
	if err := row.Scan(&s.ID, &s.TripID, &date, &s.Time, &s.IsAvailable, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Date = date.Format(DateLayout)
	return &s, nil
}

func (r *pgxRepository) Create(ctx context.Context, s *Slot) error {
	date, err := ParseDate(s.Date)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.trip_slots").
		Columns("trip_id", "slot_date", "slot_time", "is_available").
		Values(s.TripID, date, s.Time, s.IsAvailable).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create slot query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateSlot.With(err)
		}
		return fmt.Errorf("create slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*Slot, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get slot query failed: %w", err)
	}

	s, err := scanSlot(db.Executor(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.getOne(ctx, psql.Select(slotColumns...).
		From("public.trip_slots").
		Where(squirrel.Eq{"id": id}))
}

func (r *pgxRepository) LockByID(ctx context.Context, id string) (*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.getOne(ctx, psql.Select(slotColumns...).
		From("public.trip_slots").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE"))
}

func (r *pgxRepository) LockByInstant(ctx context.Context, tripID, date, tm string) (*Slot, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.getOne(ctx, psql.Select(slotColumns...).
		From("public.trip_slots").
		Where(squirrel.Eq{"trip_id": tripID, "slot_date": d, "slot_time": tm}).
		Suffix("FOR UPDATE"))
}

func (r *pgxRepository) ListByTrip(ctx context.Context, tripID string) ([]*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(slotColumns...).
		From("public.trip_slots").
		Where(squirrel.Eq{"trip_id": tripID}).
		OrderBy("slot_date ASC", "slot_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots failed: %w", err)
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots failed: %w", err)
	}
	return slots, nil
}

func (r *pgxRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trip_slots").
		Set("is_available", available).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set slot availability query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set slot availability failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *pgxRepository) HasActiveBooking(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := db.Executor(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM public.bookings
			WHERE slot_id = $1 AND status IN ('pending', 'confirmed')
		)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active booking failed: %w", err)
	}
	return exists, nil
}

// Delete removes a slot. Slots referenced by any booking row are kept by the
// foreign key; callers check HasActiveBooking first for a friendlier error.
func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.trip_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete slot query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrSlotInUse.With(err)
		}
		return fmt.Errorf("delete slot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}
