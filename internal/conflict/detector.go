// Package conflict decides whether a guide is free at an exact date and time.
package conflict

import (
	"context"
	"fmt"

	"github.com/nekogravitycat/tour-booking-backend/internal/schedule"
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

// Reason explains why an instant is taken.
type Reason string

const (
	ReasonManualBlock   Reason = "ManualBlock"
	ReasonActiveBooking Reason = "ActiveBooking"
)

// Result is either free or a conflict naming the slot that blocks the instant.
type Result struct {
	Conflict  bool
	Reason    Reason
	TripID    string
	SlotID    string
	BookingID string
}

func (r Result) Free() bool { return !r.Conflict }

func (r Result) String() string {
	if !r.Conflict {
		return "free"
	}
	return fmt.Sprintf("%s on trip %s", r.Reason, r.TripID)
}

// Evaluate checks entries for an unavailable slot at exactly (date, tm).
// Entries at other instants never conflict. When several slots match, an
// active booking wins over a manual block, then the lowest trip id wins.
func Evaluate(entries []schedule.Entry, date, tm string) Result {
	var best Result
	for _, e := range entries {
		if e.Date != date || e.Time != tm {
			continue
		}

		var candidate Result
		switch {
		case e.ActiveBookingID != "":
			candidate = Result{Conflict: true, Reason: ReasonActiveBooking, TripID: e.TripID, SlotID: e.SlotID, BookingID: e.ActiveBookingID}
		case !e.IsAvailable:
			candidate = Result{Conflict: true, Reason: ReasonManualBlock, TripID: e.TripID, SlotID: e.SlotID}
		default:
			continue
		}

		if !best.Conflict || outranks(candidate, best) {
			best = candidate
		}
	}
	return best
}

func outranks(a, b Result) bool {
	if a.Reason != b.Reason {
		return a.Reason == ReasonActiveBooking
	}
	return a.TripID < b.TripID
}

// SlotSource yields the live schedule of a guide.
type SlotSource interface {
	SlotsForGuide(ctx context.Context, guideID string) ([]schedule.Entry, error)
}

type Detector struct {
	source SlotSource
}

func NewDetector(source SlotSource) *Detector {
	return &Detector{source: source}
}

// Check reports whether guideID is taken at (date, tm). The source must be
// the live index; cached schedules are never consulted here.
func (d *Detector) Check(ctx context.Context, guideID, date, tm string) (Result, error) {
	date, tm, err := slot.Normalize(date, tm)
	if err != nil {
		return Result{}, err
	}

	entries, err := d.source.SlotsForGuide(ctx, guideID)
	if err != nil {
		return Result{}, fmt.Errorf("load guide schedule failed: %w", err)
	}
	return Evaluate(entries, date, tm), nil
}
