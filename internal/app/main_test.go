package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/tour-booking-backend/internal/app"
	"github.com/nekogravitycat/tour-booking-backend/internal/auth"
	"github.com/nekogravitycat/tour-booking-backend/internal/db"
	"github.com/nekogravitycat/tour-booking-backend/internal/user"
)

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
	jwtManager *auth.JWTManager
)

// These tests run against a real Postgres. Without TEST_DB_DSN they are skipped.
func TestMain(m *testing.M) {
	// Attempt to load .env from the repository root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		log.Printf("TEST_DB_DSN is not set, integration tests will be skipped")
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := db.Migrate(ctx, testPool, logger); err != nil {
		log.Fatalf("Unable to migrate database: %v\n", err)
	}

	testSecret := os.Getenv("TEST_JWT_SECRET")
	if testSecret == "" {
		testSecret = "integration-secret"
	}

	// No Redis and no broker: the schedule cache is off and events go to the noop publisher.
	appContainer := app.NewContainer(app.Config{
		Logger:          logger,
		DBPool:          testPool,
		JWTSecret:       testSecret,
		JWTTTL:          30 * time.Minute,
		BcryptCost:      4, // Lower cost for testing purposes
		DefaultPageSize: 20,
		MaxPageSize:     100,
	})

	testRouter = appContainer.Router
	jwtManager = appContainer.JWTManager

	exitCode := m.Run()

	testPool.Close()
	os.Exit(exitCode)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DB_DSN not set")
	}
}

func clearTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		"TRUNCATE TABLE public.bookings, public.trip_slots, public.trips, public.users CASCADE")
	require.NoError(t, err, "Failed to clean tables")
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// createTestUser inserts a user directly and returns it with a signed token.
func createTestUser(t *testing.T, email string, role auth.Role) (*user.User, string) {
	t.Helper()
	hasher := auth.NewBcryptHasher(4)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err, "Failed to hash password")

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  &email,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, user.NewPgxRepository(testPool).Create(context.Background(), u), "Failed to create test user in DB")

	token, err := jwtManager.GenerateAccessToken(u.ID, role)
	require.NoError(t, err)
	return u, token
}
