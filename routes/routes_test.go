package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentspace/constants"
	"rentspace/models"
	"rentspace/services"
	"rentspace/validator"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) (*api, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterBindings())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	svc := services.New(services.Options{
		DB:        db,
		Cache:     services.NopCache{},
		Logger:    zerolog.Nop(),
		JWTSecret: "routes-test-secret-123",
		TokenTTL:  time.Hour,
		Clock:     clockwork.NewFakeClockAt(time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)),
	})
	router := gin.New()
	SetupRoutes(router, svc, zerolog.Nop())
	return &api{t: t, router: router}, db
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *api) data(raw json.RawMessage, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(raw, v))
}

func (a *api) login(phone string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"phone": phone, "password": "password123"})
	require.Equal(a.t, http.StatusOK, code)
	var out struct {
		Token string `json:"token"`
	}
	a.data(env.Data, &out)
	return out.Token
}

func (a *api) register(phone, role string) uint {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"first_name": "Sam", "last_name": "Khoury", "phone": phone, "password": "password123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, code)
	var out struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	a.data(env.Data, &out)
	assert.Equal(a.t, constants.UserStatusPending, out.Status)
	return out.ID
}

func seedAdmin(t *testing.T, db *gorm.DB) {
	hash, err := services.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		FirstName: "Root", LastName: "Admin", Phone: "0900000001",
		Password: hash, Role: constants.RoleAdmin, Status: constants.UserStatusApproved,
	}).Error)
}

func TestPing(t *testing.T) {
	a, _ := newAPI(t)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a, db := newAPI(t)
	seedAdmin(t, db)
	adminToken := a.login("0900000001")

	landlordID := a.register("0933000001", constants.RoleLandlord)
	tenantID := a.register("0933000002", constants.RoleTenant)

	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"phone": "0933000002", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "ACCOUNT_PENDING", env.Code)

	for _, id := range []uint{landlordID, tenantID} {
		code, _ = a.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/approve", id), adminToken, nil)
		require.Equal(t, http.StatusOK, code)
	}
	landlordToken := a.login("0933000001")
	tenantToken := a.login("0933000002")

	code, _ = a.do(http.MethodPost, "/api/v1/apartments", tenantToken, map[string]interface{}{})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPost, "/api/v1/apartments", landlordToken, map[string]interface{}{
		"title": "Old town loft", "governorate": "Damascus", "city": "Bab Touma",
		"rooms": 2, "max_guests": 3, "price_per_night": 50,
	})
	require.Equal(t, http.StatusCreated, code)
	var apt struct {
		ID uint `json:"id"`
	}
	a.data(env.Data, &apt)

	code, _ = a.do(http.MethodGet, fmt.Sprintf("/api/v1/apartments/%d", apt.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/apartments/%d/approve", apt.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, "/api/v1/wallet/deposit-request", tenantToken, map[string]float64{"amount_usd": 300})
	require.Equal(t, http.StatusCreated, code)
	var deposit struct {
		ID        uint  `json:"id"`
		AmountSPY int64 `json:"amount_spy"`
	}
	a.data(env.Data, &deposit)
	assert.Equal(t, int64(33000), deposit.AmountSPY)
	code, _ = a.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/wallet-requests/%d/approve", deposit.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, "/api/v1/bookings", tenantToken, map[string]interface{}{
		"apartment_id": apt.ID, "check_in": "2025/06/01", "check_out": "2025-06-05",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "check_in")

	code, env = a.do(http.MethodPost, "/api/v1/bookings", tenantToken, map[string]interface{}{
		"apartment_id": apt.ID, "check_in": "2025-06-01", "check_out": "2025-06-05",
	})
	require.Equal(t, http.StatusCreated, code)
	var booking struct {
		ID       uint   `json:"id"`
		Status   string `json:"status"`
		PriceSPY int64  `json:"price_spy"`
	}
	a.data(env.Data, &booking)
	assert.Equal(t, constants.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(22000), booking.PriceSPY)

	path := fmt.Sprintf("/api/v1/bookings/%d/approve", booking.ID)
	code, _ = a.do(http.MethodPost, path, tenantToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = a.do(http.MethodPost, path, landlordToken, nil)
	require.Equal(t, http.StatusOK, code)
	var approved struct {
		Booking struct {
			Status string `json:"status"`
		} `json:"booking"`
		AutoRejected int64 `json:"auto_rejected"`
	}
	a.data(env.Data, &approved)
	assert.Equal(t, constants.BookingStatusConfirmed, approved.Booking.Status)

	code, env = a.do(http.MethodGet, "/api/v1/wallet", tenantToken, nil)
	require.Equal(t, http.StatusOK, code)
	var wallet struct {
		BalanceSPY int64   `json:"balance_spy"`
		BalanceUSD float64 `json:"balance_usd"`
	}
	a.data(env.Data, &wallet)
	assert.Equal(t, int64(11000), wallet.BalanceSPY)
	assert.Equal(t, 100.0, wallet.BalanceUSD)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/apartments/%d/booked-dates", apt.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	var ranges []struct {
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	}
	a.data(env.Data, &ranges)
	require.Len(t, ranges, 1)
	assert.Equal(t, "2025-06-01", ranges[0].CheckIn)
	assert.Equal(t, "2025-06-05", ranges[0].CheckOut)

	code, env = a.do(http.MethodPost, "/api/v1/bookings", tenantToken, map[string]interface{}{
		"apartment_id": apt.ID, "check_in": "2025-06-04", "check_out": "2025-06-06",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "DATE_CONFLICT", env.Code)
}

func TestAuthGuards(t *testing.T) {
	a, _ := newAPI(t)

	code, env := a.do(http.MethodGet, "/api/v1/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	code, _ = a.do(http.MethodGet, "/api/v1/admin/users", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"phone": "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "phone")
	assert.Contains(t, env.Errors, "password")
}
