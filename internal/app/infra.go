package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/tour-booking-backend/internal/event"
)

// ConnectRedis opens the schedule cache. An empty url disables caching.
// Outside production an unreachable server also disables it.
func ConnectRedis(ctx context.Context, url string, production bool, logger *slog.Logger) (*redis.Client, error) {
	if url == "" {
		logger.Info("REDIS_URL not set, schedule cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		if production {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		logger.Warn("invalid Redis URL, schedule cache disabled", "error", err)
		return nil, nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if production {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Warn("Redis not available, schedule cache disabled", "error", err)
		return nil, nil
	}

	logger.Info("connected to Redis")
	return client, nil
}

// ConnectPublisher opens the booking event publisher. An empty url, or an
// unreachable broker outside production, yields the noop publisher.
func ConnectPublisher(url string, production bool, logger *slog.Logger) (event.Publisher, error) {
	if url == "" {
		logger.Info("RABBITMQ_URL not set, booking events are not published")
		return event.NewNoopPublisher(logger), nil
	}

	publisher, err := event.NewRabbitMQPublisher(url, logger)
	if err != nil {
		if production {
			return nil, err
		}
		logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		return event.NewNoopPublisher(logger), nil
	}
	return publisher, nil
}
