package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/conflict"
	"github.com/nekogravitycat/tour-booking-backend/internal/db"
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
)

type TripReader interface {
	GetByID(ctx context.Context, id string) (*trip.Trip, error)
}

// SlotStore is the slot primitive the lifecycle drives inside its transactions.
type SlotStore interface {
	LockByInstant(ctx context.Context, tripID, date, tm string) (*slot.Slot, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

type ConflictChecker interface {
	Check(ctx context.Context, guideID, date, tm string) (conflict.Result, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, guideID string) error
}

type Notifier interface {
	BookingStatusChanged(ctx context.Context, bookingID, status string)
}

type CreateRequest struct {
	TripID  string
	Date    string
	Time    string
	Contact Contact
}

type ListResult struct {
	Items    []*Booking
	Page     int
	PageSize int
	Total    int
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error)
	Transition(ctx context.Context, actor auth.Actor, id string, target Status) (*Booking, error)
	GetByID(ctx context.Context, actor auth.Actor, id string) (*Booking, error)
	List(ctx context.Context, actor auth.Actor, filter Filter) (*ListResult, error)
}

type Deps struct {
	Repo     Repository
	Trips    TripReader
	Slots    SlotStore
	Conflict ConflictChecker
	Tx       db.Transactor
	Cache    CacheInvalidator
	Notifier Notifier
	Logger   *slog.Logger

	DefaultPageSize int
	MaxPageSize     int
}

type service struct {
	Deps
	now func() time.Time
}

func NewService(deps Deps) Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &service{Deps: deps, now: time.Now}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error) {
	if actor.Role != auth.RoleTourist {
		s.Logger.WarnContext(ctx, "booking create refused", "actor_id", actor.ID, "role", actor.Role, "trip_id", req.TripID)
		return nil, ErrNotAuthorized
	}

	date, tm, err := slot.Normalize(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	contact := Contact{
		Phone: strings.TrimSpace(req.Contact.Phone),
		Email: strings.TrimSpace(req.Contact.Email),
	}
	if contact.Phone == "" && contact.Email == "" {
		return nil, ErrContactRequired
	}

	var created *Booking
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.Trips.GetByID(ctx, req.TripID)
		if err != nil {
			return err
		}
		if !t.IsActive {
			return trip.ErrNotFound
		}
		if t.GuideID == actor.ID {
			s.Logger.WarnContext(ctx, "guide tried to book own trip", "actor_id", actor.ID, "trip_id", t.ID)
			return ErrNotAuthorized
		}

		// Serializes every writer on this guide instant, across all trips.
		if err := s.Tx.LockKey(ctx, slot.InstantKey(t.GuideID, date, tm)); err != nil {
			return err
		}

		target, err := s.Slots.LockByInstant(ctx, t.ID, date, tm)
		if err != nil {
			if errors.Is(err, slot.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		res, err := s.Conflict.Check(ctx, t.GuideID, date, tm)
		if err != nil {
			return err
		}
		if res.Conflict {
			s.Logger.InfoContext(ctx, "booking rejected by conflict",
				"trip_id", t.ID, "date", date, "time", tm, "conflict", res.String())
			return ErrSlotTaken
		}

		if err := s.Slots.SetAvailability(ctx, target.ID, false); err != nil {
			return err
		}

		b := &Booking{
			TouristID: actor.ID,
			TripID:    t.ID,
			TripTitle: t.Title,
			GuideID:   t.GuideID,
			SlotID:    target.ID,
			Date:      date,
			Time:      tm,
			Status:    StatusPending,
			Contact:   contact,
		}
		if err := s.Repo.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, created)
	return created, nil
}

// canRequest reports whether actor may ask for target on b. It does not look
// at the current status.
func canRequest(actor auth.Actor, b *Booking, target Status) bool {
	if actor.IsAdmin() || (actor.ID != "" && actor.ID == b.GuideID) {
		return true
	}
	return actor.ID != "" && actor.ID == b.TouristID && target == StatusCanceled
}

func isParty(actor auth.Actor, b *Booking) bool {
	return actor.IsAdmin() || (actor.ID != "" && (actor.ID == b.TouristID || actor.ID == b.GuideID))
}

// load fetches a booking for actor. Unrelated actors get ErrNotAuthorized for
// both missing and foreign bookings.
func (s *service) load(ctx context.Context, actor auth.Actor, id string) (*Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) && !actor.IsAdmin() {
			s.Logger.WarnContext(ctx, "booking access denied", "actor_id", actor.ID, "booking_id", id)
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	if !isParty(actor, b) {
		s.Logger.WarnContext(ctx, "booking access denied", "actor_id", actor.ID, "booking_id", id)
		return nil, ErrNotAuthorized
	}
	return b, nil
}

func (s *service) Transition(ctx context.Context, actor auth.Actor, id string, target Status) (*Booking, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *Booking
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.load(ctx, actor, id)
		if err != nil {
			return err
		}
		if !canRequest(actor, b, target) {
			s.Logger.WarnContext(ctx, "booking transition not authorized",
				"actor_id", actor.ID, "booking_id", id, "target", target)
			return ErrNotAuthorized
		}

		// Lock order matches Create: instant lock first, then rows.
		if err := s.Tx.LockKey(ctx, slot.InstantKey(b.GuideID, b.Date, b.Time)); err != nil {
			return err
		}
		b, err = s.Repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if !b.Status.CanTransitionTo(target) {
			s.Logger.InfoContext(ctx, "illegal booking transition",
				"booking_id", id, "from", b.Status, "to", target)
			return ErrIllegalTransition
		}
		if target == StatusCompleted {
			at, err := slot.Instant(b.Date, b.Time)
			if err != nil {
				return err
			}
			if s.now().Before(at) {
				s.Logger.InfoContext(ctx, "booking completed before its start",
					"booking_id", id, "starts_at", at)
				return ErrIllegalTransition
			}
		}

		b.Status = target
		if err := s.Repo.UpdateStatus(ctx, b); err != nil {
			return err
		}
		if target == StatusCanceled {
			if err := s.Slots.SetAvailability(ctx, b.SlotID, true); err != nil {
				return err
			}
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, updated)
	return updated, nil
}

func (s *service) afterCommit(ctx context.Context, b *Booking) {
	if err := s.Cache.Invalidate(ctx, b.GuideID); err != nil {
		s.Logger.WarnContext(ctx, "schedule cache invalidation failed", "guide_id", b.GuideID, "error", err)
	}
	s.Notifier.BookingStatusChanged(ctx, b.ID, string(b.Status))
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, id string) (*Booking, error) {
	return s.load(ctx, actor, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter Filter) (*ListResult, error) {
	switch actor.Role {
	case auth.RoleAdmin:
	case auth.RoleGuide:
		filter.TouristID = ""
		filter.GuideID = actor.ID
	case auth.RoleTourist:
		filter.TouristID = actor.ID
		filter.GuideID = ""
	default:
		return nil, ErrNotAuthorized
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.DateFrom != "" && filter.DateTo != "" {
		from, err := slot.ParseDate(filter.DateFrom)
		if err != nil {
			return nil, err
		}
		to, err := slot.ParseDate(filter.DateTo)
		if err != nil {
			return nil, err
		}
		if from.After(to) {
			return nil, ErrInvalidDateRange
		}
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = s.DefaultPageSize
	}
	if s.MaxPageSize > 0 && filter.PageSize > s.MaxPageSize {
		filter.PageSize = s.MaxPageSize
	}

	items, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:    items,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}, nil
}
