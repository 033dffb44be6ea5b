package booking

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/conflict"
	"github.com/nekogravitycat/tour-booking-backend/internal/schedule"
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
)

// world is an in-memory stand-in for the database. Transactions run one at a
// time and roll back by restoring a snapshot.
type world struct {
	txMu sync.Mutex
	mu   sync.Mutex

	trips    map[string]*trip.Trip
	slots    map[string]*slot.Slot
	bookings map[string]*Booking

	lockedKeys []string
	failCreate error
}

func newWorld() *world {
	return &world{
		trips:    map[string]*trip.Trip{},
		slots:    map[string]*slot.Slot{},
		bookings: map[string]*Booking{},
	}
}

func (w *world) addTrip(id, guideID, title string) {
	w.trips[id] = &trip.Trip{ID: id, GuideID: guideID, Title: title, IsActive: true}
}

func (w *world) addSlot(tripID, date, tm string) string {
	id := uuid.NewString()
	w.slots[id] = &slot.Slot{ID: id, TripID: tripID, Date: date, Time: tm, IsAvailable: true}
	return id
}

func (w *world) slotAt(tripID, date, tm string) *slot.Slot {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.slots {
		if s.TripID == tripID && s.Date == date && s.Time == tm {
			cp := *s
			return &cp
		}
	}
	return nil
}

func (w *world) activeBookings() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.bookings {
		if b.Status.IsActive() {
			n++
		}
	}
	return n
}

type snapshot struct {
	slots    map[string]slot.Slot
	bookings map[string]Booking
}

func (w *world) snapshot() snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := snapshot{slots: map[string]slot.Slot{}, bookings: map[string]Booking{}}
	for k, v := range w.slots {
		s.slots[k] = *v
	}
	for k, v := range w.bookings {
		s.bookings[k] = *v
	}
	return s
}

func (w *world) restore(s snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots = map[string]*slot.Slot{}
	for k, v := range s.slots {
		cp := v
		w.slots[k] = &cp
	}
	w.bookings = map[string]*Booking{}
	for k, v := range s.bookings {
		cp := v
		w.bookings[k] = &cp
	}
}

func (w *world) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	w.txMu.Lock()
	defer w.txMu.Unlock()
	snap := w.snapshot()
	if err := fn(ctx); err != nil {
		w.restore(snap)
		return err
	}
	return nil
}

func (w *world) LockKey(_ context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lockedKeys = append(w.lockedKeys, key)
	return nil
}

type tripView struct{ w *world }

func (v tripView) GetByID(_ context.Context, id string) (*trip.Trip, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	t, ok := v.w.trips[id]
	if !ok {
		return nil, trip.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

type slotView struct{ w *world }

func (v slotView) LockByInstant(_ context.Context, tripID, date, tm string) (*slot.Slot, error) {
	if s := v.w.slotAt(tripID, date, tm); s != nil {
		return s, nil
	}
	return nil, slot.ErrSlotNotFound
}

func (v slotView) SetAvailability(_ context.Context, id string, available bool) error {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	s, ok := v.w.slots[id]
	if !ok {
		return slot.ErrSlotNotFound
	}
	s.IsAvailable = available
	return nil
}

type scheduleView struct{ w *world }

func (v scheduleView) SlotsForGuide(_ context.Context, guideID string) ([]schedule.Entry, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []schedule.Entry
	for _, s := range v.w.slots {
		t := v.w.trips[s.TripID]
		if t == nil || t.GuideID != guideID {
			continue
		}
		e := schedule.Entry{TripID: s.TripID, SlotID: s.ID, Date: s.Date, Time: s.Time, IsAvailable: s.IsAvailable}
		for _, b := range v.w.bookings {
			if b.SlotID == s.ID && b.Status.IsActive() {
				e.ActiveBookingID = b.ID
			}
		}
		out = append(out, e)
	}
	return out, nil
}

type bookingRepo struct{ w *world }

func (r bookingRepo) Create(_ context.Context, b *Booking) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	if r.w.failCreate != nil {
		return r.w.failCreate
	}
	for _, cur := range r.w.bookings {
		if cur.GuideID == b.GuideID && cur.Date == b.Date && cur.Time == b.Time && cur.Status.IsActive() {
			return ErrSlotTaken
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.w.bookings[b.ID] = &cp
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	b, ok := r.w.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r bookingRepo) LockByID(ctx context.Context, id string) (*Booking, error) {
	return r.GetByID(ctx, id)
}

func (r bookingRepo) UpdateStatus(_ context.Context, b *Booking) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	cur, ok := r.w.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Status = b.Status
	return nil
}

func (r bookingRepo) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	r.w.mu.Lock()
	all := make([]*Booking, 0, len(r.w.bookings))
	for _, b := range r.w.bookings {
		switch {
		case f.TouristID != "" && b.TouristID != f.TouristID:
		case f.GuideID != "" && b.GuideID != f.GuideID:
		case f.TripID != "" && b.TripID != f.TripID:
		case f.Status != "" && b.Status != f.Status:
		default:
			cp := *b
			all = append(all, &cp)
		}
	}
	r.w.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := min((f.Page-1)*f.PageSize, len(all))
	end := min(start+f.PageSize, len(all))
	return all[start:end], len(all), nil
}

type countingCache struct {
	mu     sync.Mutex
	guides []string
}

func (c *countingCache) Invalidate(_ context.Context, guideID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guides = append(c.guides, guideID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) BookingStatusChanged(_ context.Context, bookingID, status string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, bookingID+":"+status)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

var (
	guideOne   = auth.Actor{ID: "G1", Role: auth.RoleGuide}
	guideTwo   = auth.Actor{ID: "G2", Role: auth.RoleGuide}
	touristOne = auth.Actor{ID: "T1", Role: auth.RoleTourist}
	touristTwo = auth.Actor{ID: "T2", Role: auth.RoleTourist}
	stranger   = auth.Actor{ID: "T9", Role: auth.RoleTourist}
	admin      = auth.Actor{ID: "A1", Role: auth.RoleAdmin}
)

type harness struct {
	svc      *service
	world    *world
	cache    *countingCache
	notifier *recordingNotifier
}

// newHarness seeds guide G1 with two trips sharing the 2025-06-15 09:00 instant.
func newHarness() harness {
	w := newWorld()
	w.addTrip("petra-day", "G1", "Petra Day Tour")
	w.addTrip("petra-night", "G1", "Petra by Night")
	w.addTrip("wadi-rum", "G2", "Wadi Rum Jeep")
	w.addSlot("petra-day", "2025-06-15", "09:00")
	w.addSlot("petra-night", "2025-06-15", "09:00")
	w.addSlot("petra-day", "2025-06-16", "09:00")
	w.addSlot("wadi-rum", "2025-06-15", "09:00")

	h := harness{world: w, cache: &countingCache{}, notifier: &recordingNotifier{}}
	h.svc = NewService(Deps{
		Repo:            bookingRepo{w},
		Trips:           tripView{w},
		Slots:           slotView{w},
		Conflict:        conflict.NewDetector(scheduleView{w}),
		Tx:              w,
		Cache:           h.cache,
		Notifier:        h.notifier,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}).(*service)
	h.svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return h
}

func bookReq(tripID, date, tm string) CreateRequest {
	return CreateRequest{TripID: tripID, Date: date, Time: tm, Contact: Contact{Email: "t@example.com"}}
}
