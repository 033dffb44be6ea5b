package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/tour-booking-backend/internal/api"
	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/booking"
	"github.com/nekogravitycat/tour-booking-backend/internal/conflict"
	"github.com/nekogravitycat/tour-booking-backend/internal/db"
	"github.com/nekogravitycat/tour-booking-backend/internal/event"
	"github.com/nekogravitycat/tour-booking-backend/internal/schedule"
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
	"github.com/nekogravitycat/tour-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	// Redis is optional; nil disables the schedule cache.
	Redis            *redis.Client
	ScheduleCacheTTL time.Duration

	// Publisher is optional; nil uses the noop publisher.
	Publisher            event.Publisher
	EventBreakerFailures int
	EventBreakerTimeout  time.Duration

	DefaultPageSize int
	MaxPageSize     int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Notifier   *event.Notifier
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = event.NewNoopPublisher(logger)
	}

	// Init Components
	passwordHasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	transactor := db.NewTransactor(cfg.DBPool)
	notifier := event.NewNotifier(publisher, event.NotifierConfig{
		FailureThreshold: uint32(max(cfg.EventBreakerFailures, 0)),
		OpenTimeout:      cfg.EventBreakerTimeout,
	}, logger)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, logger)

	// Trip Module
	tripRepo := trip.NewPgxRepository(cfg.DBPool)
	tripService := trip.NewService(tripRepo, cfg.DefaultPageSize, cfg.MaxPageSize)

	// Schedule Index
	scheduleRepo := schedule.NewPgxRepository(cfg.DBPool)
	scheduleIndex := schedule.NewIndex(scheduleRepo, cfg.Redis, cfg.ScheduleCacheTTL, logger)

	// Slot Module
	slotRepo := slot.NewPgxRepository(cfg.DBPool)
	slotService := slot.NewService(slotRepo, tripRepo, transactor, scheduleIndex, logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(booking.Deps{
		Repo:            bookingRepo,
		Trips:           tripRepo,
		Slots:           slotRepo,
		Conflict:        conflict.NewDetector(scheduleIndex),
		Tx:              transactor,
		Cache:           scheduleIndex,
		Notifier:        notifier,
		Logger:          logger,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         logger,
		JWTManager:     jwtManager,
		UserService:    userService,
		TripService:    tripService,
		SlotService:    slotService,
		Calendar:       scheduleIndex,
		BookingService: bookingService,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Notifier:   notifier,
	}
}
