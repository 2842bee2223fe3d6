package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rentspace/constants"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	svc    *Services
	clock  *clockwork.FakeClock
	phones int
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		db:    newTestDB(t),
		clock: clockwork.NewFakeClockAt(time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)),
	}
	f.svc = New(Options{
		DB:        f.db,
		Cache:     NopCache{},
		Logger:    zerolog.Nop(),
		JWTSecret: "test-secret-0123456789",
		TokenTTL:  time.Hour,
		Clock:     f.clock,
	})
	return f
}

func (f *fixture) user(role string) types.Principal {
	f.t.Helper()
	f.phones++
	hash, err := HashPassword("password123")
	require.NoError(f.t, err)
	u := models.User{
		FirstName: "Test",
		LastName:  fmt.Sprintf("%s%d", role, f.phones),
		Phone:     fmt.Sprintf("0999%06d", f.phones),
		Password:  hash,
		Role:      role,
		Status:    constants.UserStatusApproved,
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return types.Principal{UserID: u.ID, Role: role}
}

func (f *fixture) tenant() types.Principal   { return f.user(constants.RoleTenant) }
func (f *fixture) landlord() types.Principal { return f.user(constants.RoleLandlord) }
func (f *fixture) admin() types.Principal    { return f.user(constants.RoleAdmin) }

func (f *fixture) apartment(owner types.Principal, pricePerNight float64) *models.Apartment {
	f.t.Helper()
	apt := &models.Apartment{
		OwnerID:       owner.UserID,
		Title:         "Sunny flat",
		Description:   "Two rooms near the old market",
		Governorate:   "Damascus",
		City:          "Mezzeh",
		Rooms:         2,
		MaxGuests:     4,
		PricePerNight: pricePerNight,
		Status:        constants.ApartmentStatusApproved,
		IsAvailable:   true,
	}
	require.NoError(f.t, f.db.Create(apt).Error)
	return apt
}

func (f *fixture) fund(p types.Principal, amount int64) {
	f.t.Helper()
	_, err := f.svc.Wallet.AddFunds(f.ctx, Entry{UserID: p.UserID, Amount: amount, Type: constants.TxDeposit})
	require.NoError(f.t, err)
}

func (f *fixture) balance(p types.Principal) int64 {
	f.t.Helper()
	w, err := f.svc.Wallet.Get(f.ctx, p.UserID)
	require.NoError(f.t, err)
	return w.Balance
}

func (f *fixture) reload(b *models.Booking) *models.Booking {
	f.t.Helper()
	var out models.Booking
	require.NoError(f.t, f.db.First(&out, b.ID).Error)
	return &out
}

func requireCode(t *testing.T, err error, code apperr.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.GetAppError(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
