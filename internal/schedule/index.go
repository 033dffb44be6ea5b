package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
)

// Index answers "which slots does this guide have" across all trips.
//
// SlotsForGuide always reads current state and is the only read used for
// conflict checks. CachedSlotsForGuide serves calendar views and may lag
// behind writes until Invalidate runs.
type Index struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIndex builds an Index. A nil cache disables caching.
func NewIndex(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Index {
	return &Index{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(guideID string) string {
	return "schedule:guide:" + guideID
}

// SlotsForGuide reads the guide's schedule from the database. Inside a
// transaction it sees that transaction's writes.
func (i *Index) SlotsForGuide(ctx context.Context, guideID string) ([]Entry, error) {
	return i.repo.ListForGuide(ctx, guideID)
}

// CachedSlotsForGuide serves the schedule from the cache when possible.
// Cache failures fall back to the database.
func (i *Index) CachedSlotsForGuide(ctx context.Context, guideID string) ([]Entry, error) {
	if i.cache == nil {
		return i.SlotsForGuide(ctx, guideID)
	}

	raw, err := i.cache.Get(ctx, cacheKey(guideID)).Bytes()
	switch {
	case err == nil:
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		i.logger.WarnContext(ctx, "discarding malformed schedule cache entry", "guide_id", guideID)
	case !errors.Is(err, redis.Nil):
		i.logger.WarnContext(ctx, "schedule cache read failed", "guide_id", guideID, "error", err)
	}

	entries, err := i.SlotsForGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(entries); err == nil {
		if err := i.cache.Set(ctx, cacheKey(guideID), raw, i.ttl).Err(); err != nil {
			i.logger.WarnContext(ctx, "schedule cache write failed", "guide_id", guideID, "error", err)
		}
	}
	return entries, nil
}

// Invalidate drops the cached schedule of a guide.
func (i *Index) Invalidate(ctx context.Context, guideID string) error {
	if i.cache == nil {
		return nil
	}
	return i.cache.Del(ctx, cacheKey(guideID)).Err()
}

// Calendar returns the cached schedule restricted to dates in [from, to].
// Empty bounds are open.
func (i *Index) Calendar(ctx context.Context, guideID, from, to string) ([]Entry, error) {
	if from != "" {
		d, err := slot.ParseDate(from)
		if err != nil {
			return nil, err
		}
		from = d.Format(slot.DateLayout)
	}
	if to != "" {
		d, err := slot.ParseDate(to)
		if err != nil {
			return nil, err
		}
		to = d.Format(slot.DateLayout)
	}
	if from != "" && to != "" && from > to {
		return nil, ErrInvalidRange
	}

	entries, err := i.CachedSlotsForGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
