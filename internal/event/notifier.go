package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

const publishTimeout = 5 * time.Second

// BookingStatusChanged is the message emitted after every committed booking
// state change.
type BookingStatusChanged struct {
	EventID    string    `json:"event_id"`
	BookingID  string    `json:"booking_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func RoutingKey(status string) string {
	return "booking.status." + status
}

type NotifierConfig struct {
	// FailureThreshold is the number of consecutive publish failures that
	// opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Notifier delivers booking notifications without ever failing the caller.
// A circuit breaker stops calling a broker that keeps failing.
type Notifier struct {
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *slog.Logger
	now       func() time.Time
}

func NewNotifier(publisher Publisher, cfg NotifierConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "booking-events",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Notifier{
		publisher: publisher,
		breaker:   breaker,
		logger:    logger,
		now:       time.Now,
	}
}

// BookingStatusChanged publishes a status change. Errors are logged only.
func (n *Notifier) BookingStatusChanged(ctx context.Context, bookingID, status string) {
	msg := BookingStatusChanged{
		EventID:    uuid.NewString(),
		BookingID:  bookingID,
		Status:     status,
		OccurredAt: n.now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		n.logger.ErrorContext(ctx, "encode booking event failed", "booking_id", bookingID, "error", err)
		return
	}

	// The request may finish before the broker answers.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	_, err = n.breaker.Execute(func() (any, error) {
		return nil, n.publisher.Publish(pubCtx, RoutingKey(status), payload)
	})
	if err != nil {
		n.logger.WarnContext(ctx, "booking event not delivered",
			"booking_id", bookingID,
			"status", status,
			"breaker_state", n.breaker.State().String(),
			"error", err,
		)
	}
}

func (n *Notifier) Close() error {
	return n.publisher.Close()
}
