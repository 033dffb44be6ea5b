package api

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/tour-booking-backend/internal/booking/http"
	scheduleHttp "github.com/nekogravitycat/tour-booking-backend/internal/schedule/http"
	"github.com/nekogravitycat/tour-booking-backend/internal/slot"
	slotHttp "github.com/nekogravitycat/tour-booking-backend/internal/slot/http"
	"github.com/nekogravitycat/tour-booking-backend/internal/trip"
	tripHttp "github.com/nekogravitycat/tour-booking-backend/internal/trip/http"
	"github.com/nekogravitycat/tour-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/tour-booking-backend/internal/user/http"
)

// Config carries the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger

	JWTManager     *auth.JWTManager
	UserService    user.Service
	TripService    trip.Service
	SlotService    slot.Service
	Calendar       scheduleHttp.CalendarReader
	BookingService booking.Service
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one structured log line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	tripHandler := tripHttp.NewHandler(cfg.TripService)
	slotHandler := slotHttp.NewHandler(cfg.SlotService)
	scheduleHandler := scheduleHttp.NewHandler(cfg.Calendar)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		tripHttp.RegisterRoutes(v1, tripHandler, authMiddleware)
		slotHttp.RegisterRoutes(v1, slotHandler, authMiddleware)
		scheduleHttp.RegisterRoutes(v1, scheduleHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000", // Web client
			"http://localhost:8081", // Swagger
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
