package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/tour-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id string) (*Trip, error)
	Update(ctx context.Context, t *Trip) error
	// Deactivate soft-deletes the trip. Its slots and bookings are kept.
	Deactivate(ctx context.Context, id string) error
	// Search returns at most limit active trips starting at offset.
	Search(ctx context.Context, filter SearchFilter, limit, offset uint64) ([]*Trip, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var tripColumns = []string{
	"t.id", "t.guide_id", "t.title", "t.description", "t.city", "t.price", "t.trip_type",
	"t.start_location", "t.path", "t.is_active", "t.created_at", "t.updated_at",
}

func scanTrip(row pgx.Row, extra ...any) (*Trip, error) {
	var t Trip
	var typ string
	dest := []any{
		&t.ID, &t.GuideID, &t.Title, &t.Description, &t.City, &t.Price, &typ,
		&t.StartLocation, &t.Path, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t.Type = Type(typ)
	return &t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *Trip) error {
	path := t.Path
	if path == nil {
		path = []Location{}
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.trips").
		Columns("guide_id", "title", "description", "city", "price", "trip_type", "start_location", "path").
		Values(t.GuideID, t.Title, t.Description, t.City, t.Price, string(t.Type), t.StartLocation, path).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create trip query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("create trip failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Trip, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(tripColumns...).
		From("public.trips t").
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get trip query failed: %w", err)
	}

	t, err := scanTrip(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get trip failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Trip) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trips").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("city", t.City).
		Set("price", t.Price).
		Set("trip_type", string(t.Type)).
		Set("start_location", t.StartLocation).
		Set("path", t.Path).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": t.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update trip query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update trip failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Deactivate(ctx context.Context, id string) error {
	// Soft delete implementation
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trips").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete (soft) trip query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete (soft) trip failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// availableSlotsColumn aggregates the currently available slots of each trip row.
const availableSlotsColumn = `COALESCE((
		SELECT json_agg(json_build_object(
			'id', s.id,
			'date', to_char(s.slot_date, 'YYYY-MM-DD'),
			'time', s.slot_time
		) ORDER BY s.slot_date, s.slot_time)
		FROM public.trip_slots s
		WHERE s.trip_id = t.id AND s.is_available
	), '[]'::json) AS available_slots`

// escapeLike escapes LIKE wildcards so user text is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func buildSearchQuery(filter SearchFilter, limit, offset uint64) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(append([]string{}, tripColumns...), availableSlotsColumn)...).
		From("public.trips t").
		Where(squirrel.Eq{"t.is_active": true})

	if filter.City != nil {
		query = query.Where("lower(t.city) = lower(?)", *filter.City)
	}
	if filter.Type != nil {
		query = query.Where(squirrel.Eq{"t.trip_type": string(*filter.Type)})
	}
	if filter.MinPrice != nil {
		query = query.Where(squirrel.GtOrEq{"t.price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		query = query.Where(squirrel.LtOrEq{"t.price": *filter.MaxPrice})
	}
	if q := strings.TrimSpace(filter.TextQuery); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"t.title": pattern},
			squirrel.ILike{"t.description": pattern},
			squirrel.ILike{"t.city": pattern},
		})
	}

	// The id tie-break keeps the order total so offset pages never overlap.
	switch filter.Sort {
	case SortPrice:
		query = query.OrderBy("t.price ASC", "t.id ASC")
	case SortOldest:
		query = query.OrderBy("t.created_at ASC", "t.id ASC")
	default:
		query = query.OrderBy("t.created_at DESC", "t.id DESC")
	}

	return query.Limit(limit).Offset(offset)
}

func (r *pgxRepository) Search(ctx context.Context, filter SearchFilter, limit, offset uint64) ([]*Trip, error) {
	sql, args, err := buildSearchQuery(filter, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search trips query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search trips failed: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		var slots []SlotSummary
		t, err := scanTrip(rows, &slots)
		if err != nil {
			return nil, fmt.Errorf("scan trip failed: %w", err)
		}
		t.AvailableSlots = slots
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search trips failed: %w", err)
	}

	return trips, nil
}
