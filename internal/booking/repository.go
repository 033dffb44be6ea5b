package booking

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
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// LockByID is GetByID with the booking row locked until the transaction ends.
	LockByID(ctx context.Context, id string) (*Booking, error)
	UpdateStatus(ctx context.Context, b *Booking) error
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"b.id", "b.tourist_id", "b.trip_id", "t.title", "b.guide_id", "b.slot_id",
	"b.slot_date", "b.slot_time", "b.status", "b.contact_phone", "b.contact_email",
	"b.created_at", "b.updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	var date time.Time
	var status string
	dest := []any{
		&b.ID, &b.TouristID, &b.TripID, &b.TripTitle, &b.GuideID, &b.SlotID,
		&date, &b.Time, &status, &b.Contact.Phone, &b.Contact.Email,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Date = date.Format(slot.DateLayout)
	b.Status = Status(status)
	return &b, nil
}

func selectBookings() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.trips t ON t.id = b.trip_id")
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	date, err := slot.ParseDate(b.Date)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("tourist_id", "trip_id", "guide_id", "slot_id", "slot_date", "slot_time",
			"status", "contact_phone", "contact_email").
		Values(b.TouristID, b.TripID, b.GuideID, b.SlotID, date, b.Time,
			string(b.Status), b.Contact.Phone, b.Contact.Email).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken.With(err)
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*Booking, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.Executor(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, selectBookings().Where(squirrel.Eq{"b.id": id}))
}

func (r *pgxRepository) LockByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, selectBookings().Where(squirrel.Eq{"b.id": id}).Suffix("FOR UPDATE OF b"))
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", string(b.Status)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update booking status failed: %w", err)
	}
	return nil
}

func buildListQuery(filter Filter) (squirrel.SelectBuilder, error) {
	query := selectBookings().Column("count(*) OVER() AS total_count")

	if filter.TouristID != "" {
		query = query.Where(squirrel.Eq{"b.tourist_id": filter.TouristID})
	}
	if filter.GuideID != "" {
		query = query.Where(squirrel.Eq{"b.guide_id": filter.GuideID})
	}
	if filter.TripID != "" {
		query = query.Where(squirrel.Eq{"b.trip_id": filter.TripID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": string(filter.Status)})
	}
	if filter.DateFrom != "" {
		d, err := slot.ParseDate(filter.DateFrom)
		if err != nil {
			return query, err
		}
		query = query.Where(squirrel.GtOrEq{"b.slot_date": d})
	}
	if filter.DateTo != "" {
		d, err := slot.ParseDate(filter.DateTo)
		if err != nil {
			return query, err
		}
		query = query.Where(squirrel.LtOrEq{"b.slot_date": d})
	}

	offset := uint64(filter.Page-1) * uint64(filter.PageSize)
	return query.
		OrderBy("b.slot_date DESC", "b.slot_time DESC", "b.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(offset), nil
}

// List expects Page and PageSize to be normalized by the caller.
func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, total, nil
}
