package slot

import (
	"context"
	"log/slog"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/db"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
)

// TripReader is the part of the trip catalog the slot store depends on.
type TripReader interface {
	GetByID(ctx context.Context, id string) (*trip.Trip, error)
}

// CacheInvalidator drops cached schedule data of a guide.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, guideID string) error
}

type Service interface {
	AddSlot(ctx context.Context, actor auth.Actor, tripID, date, tm string) (*Slot, error)
	ListSlots(ctx context.Context, tripID string) ([]*Slot, error)
	// SetAvailability is the guide's manual block and unblock.
	SetAvailability(ctx context.Context, actor auth.Actor, slotID string, available bool) (*Slot, error)
	RemoveSlot(ctx context.Context, actor auth.Actor, slotID string) error
}

type service struct {
	repo   Repository
	trips  TripReader
	tx     db.Transactor
	cache  CacheInvalidator
	logger *slog.Logger
}

func NewService(repo Repository, trips TripReader, tx db.Transactor, cache CacheInvalidator, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		trips:  trips,
		tx:     tx,
		cache:  cache,
		logger: logger,
	}
}

// managedTrip loads a trip the actor may attach slots to.
func (s *service) managedTrip(ctx context.Context, actor auth.Actor, tripID string) (*trip.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(t.GuideID) {
		return nil, ErrPermissionDenied
	}
	return t, nil
}

func (s *service) invalidate(ctx context.Context, guideID string) {
	if err := s.cache.Invalidate(ctx, guideID); err != nil {
		s.logger.WarnContext(ctx, "schedule cache invalidation failed", "guide_id", guideID, "error", err)
	}
}

func (s *service) AddSlot(ctx context.Context, actor auth.Actor, tripID, date, tm string) (*Slot, error) {
	date, tm, err := Normalize(date, tm)
	if err != nil {
		return nil, err
	}

	t, err := s.managedTrip(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, trip.ErrNotFound
	}

	slot := &Slot{TripID: tripID, Date: date, Time: tm, IsAvailable: true}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.invalidate(ctx, t.GuideID)
	return slot, nil
}

func (s *service) ListSlots(ctx context.Context, tripID string) ([]*Slot, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *service) SetAvailability(ctx context.Context, actor auth.Actor, slotID string, available bool) (*Slot, error) {
	var (
		result  *Slot
		guideID string
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		t, err := s.managedTrip(ctx, actor, current.TripID)
		if err != nil {
			return err
		}
		guideID = t.GuideID

		// Same lock as booking creation, so a block never races a booking.
		if err := s.tx.LockKey(ctx, InstantKey(t.GuideID, current.Date, current.Time)); err != nil {
			return err
		}
		locked, err := s.repo.LockByID(ctx, slotID)
		if err != nil {
			return err
		}

		if available && !locked.IsAvailable {
			booked, err := s.repo.HasActiveBooking(ctx, slotID)
			if err != nil {
				return err
			}
			if booked {
				return ErrSlotBooked
			}
		}

		if locked.IsAvailable != available {
			if err := s.repo.SetAvailability(ctx, slotID, available); err != nil {
				return err
			}
			locked.IsAvailable = available
		}
		result = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, guideID)
	return result, nil
}

func (s *service) RemoveSlot(ctx context.Context, actor auth.Actor, slotID string) error {
	var guideID string

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		t, err := s.managedTrip(ctx, actor, current.TripID)
		if err != nil {
			return err
		}
		guideID = t.GuideID

		if err := s.tx.LockKey(ctx, InstantKey(t.GuideID, current.Date, current.Time)); err != nil {
			return err
		}
		booked, err := s.repo.HasActiveBooking(ctx, slotID)
		if err != nil {
			return err
		}
		if booked {
			return ErrSlotBooked
		}
		return s.repo.Delete(ctx, slotID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, guideID)
	return nil
}
