package services

import (
	"testing"
	"time"

	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"
	"rentspace/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) book(p types.Principal, apt *models.Apartment, checkIn, checkOut string) *models.Booking {
	f.t.Helper()
	b, err := f.svc.Bookings.Create(f.ctx, p, dto.CreateBookingRequest{
		ApartmentID: apt.ID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
	})
	require.NoError(f.t, err)
	return b
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCreateBooking_PricesStayInSPY(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)

	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")

	assert.Equal(t, constants.BookingStatusPending, b.Status)
	assert.Equal(t, 4, b.Nights())
	assert.Equal(t, 200.0, b.TotalPrice)
	assert.Equal(t, int64(22000), b.PriceSPY)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)

	tests := []struct {
		name     string
		p        types.Principal
		checkIn  string
		checkOut string
		code     apperr.ErrorCode
	}{
		{"landlord cannot book", owner, "2025-06-01", "2025-06-05", apperr.ErrCodeForbidden},
		{"bad format", tenant, "06/01/2025", "2025-06-05", apperr.ErrCodeInvalidFormat},
		{"check-in in the past", tenant, "2025-05-19", "2025-06-05", apperr.ErrCodeValidation},
		{"check-out before check-in", tenant, "2025-06-05", "2025-06-01", apperr.ErrCodeValidation},
		{"zero nights", tenant, "2025-06-05", "2025-06-05", apperr.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Bookings.Create(f.ctx, tt.p, dto.CreateBookingRequest{
				ApartmentID: apt.ID,
				CheckIn:     tt.checkIn,
				CheckOut:    tt.checkOut,
			})
			requireCode(t, err, tt.code)
		})
	}
}

func TestCreateBooking_CheckInTodayIsAllowed(t *testing.T) {
	f := newFixture(t)
	apt := f.apartment(f.landlord(), 10)

	b := f.book(f.tenant(), apt, "2025-05-20", "2025-05-21")
	assert.Equal(t, 1, b.Nights())
}

func TestCreateBooking_UnavailableApartment(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	apt := f.apartment(owner, 50)
	require.NoError(t, f.db.Model(apt).Update("status", constants.ApartmentStatusPending).Error)

	_, err := f.svc.Bookings.Create(f.ctx, f.tenant(), dto.CreateBookingRequest{
		ApartmentID: apt.ID, CheckIn: "2025-06-01", CheckOut: "2025-06-05",
	})
	requireCode(t, err, apperr.ErrCodeApartmentUnavailable)

	_, err = f.svc.Bookings.Create(f.ctx, f.tenant(), dto.CreateBookingRequest{
		ApartmentID: 9999, CheckIn: "2025-06-01", CheckOut: "2025-06-05",
	})
	requireCode(t, err, apperr.ErrCodeNotFound)
}

func TestApproveBooking_MovesPayment(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(tenant, 22000)

	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")
	confirmed, rejected, err := f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), rejected)
	assert.Equal(t, constants.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, constants.BookingStatusConfirmed, f.reload(b).Status)
	assert.Equal(t, int64(0), f.balance(tenant))
	assert.Equal(t, int64(22000), f.balance(owner))

	var entries []models.WalletTransaction
	require.NoError(t, f.db.Where("booking_id = ?", b.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, constants.TxBookingPayment, entries[0].Type)
	assert.Equal(t, int64(-22000), entries[0].Amount)
	assert.Equal(t, tenant.UserID, entries[0].UserID)
	assert.Equal(t, constants.TxBookingIncome, entries[1].Type)
	assert.Equal(t, int64(22000), entries[1].Amount)
	assert.Equal(t, int64(22000), entries[1].BalanceAfter)
}

func TestApproveBooking_AutoRejectsOverlappingPending(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	first, second, third := f.tenant(), f.tenant(), f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(first, 22000)

	a := f.book(first, apt, "2025-06-01", "2025-06-05")
	c := f.book(second, apt, "2025-06-03", "2025-06-06")
	d := f.book(third, apt, "2025-06-10", "2025-06-12")

	_, rejected, err := f.svc.Bookings.Approve(f.ctx, owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rejected)

	assert.Equal(t, constants.BookingStatusConfirmed, f.reload(a).Status)
	c = f.reload(c)
	assert.Equal(t, constants.BookingStatusRejected, c.Status)
	assert.Equal(t, autoRejectReason, c.RejectionReason)
	assert.Equal(t, constants.BookingStatusPending, f.reload(d).Status)

	_, _, err = f.svc.Bookings.Approve(f.ctx, owner, c.ID)
	requireCode(t, err, apperr.ErrCodeInvalidTransition)
}

func TestApproveBooking_AdjacentStaysDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	first, second := f.tenant(), f.tenant()
	apt := f.apartment(owner, 10)
	f.fund(first, 10000)
	f.fund(second, 10000)

	a := f.book(first, apt, "2025-06-01", "2025-06-05")
	b := f.book(second, apt, "2025-06-05", "2025-06-08")

	_, rejected, err := f.svc.Bookings.Approve(f.ctx, owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rejected)

	_, _, err = f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	require.NoError(t, err)
}

func TestApproveBooking_InsufficientFundsRollsBack(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant, other := f.tenant(), f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(tenant, 21999)

	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")
	c := f.book(other, apt, "2025-06-02", "2025-06-03")

	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	requireCode(t, err, apperr.ErrCodeInsufficientFund)
	details := apperr.GetAppError(err).Details
	assert.Equal(t, int64(22000), details["required"])
	assert.Equal(t, int64(21999), details["available"])

	assert.Equal(t, constants.BookingStatusPending, f.reload(b).Status)
	assert.Equal(t, constants.BookingStatusPending, f.reload(c).Status)
	assert.Equal(t, int64(21999), f.balance(tenant))
	assert.Equal(t, int64(0), f.balance(owner))

	var count int64
	require.NoError(t, f.db.Model(&models.WalletTransaction{}).Where("booking_id = ?", b.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApproveBooking_ConflictWithConfirmed(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(tenant, 100000)

	confirmed := &models.Booking{
		UserID: tenant.UserID, ApartmentID: apt.ID,
		CheckIn:  mustDate(t, "2025-06-01"),
		CheckOut: mustDate(t, "2025-06-05"),
		Status:   constants.BookingStatusConfirmed,
	}
	require.NoError(t, f.db.Create(confirmed).Error)
	pending := &models.Booking{
		UserID: tenant.UserID, ApartmentID: apt.ID,
		CheckIn:  mustDate(t, "2025-06-04"),
		CheckOut: mustDate(t, "2025-06-06"),
		Status:   constants.BookingStatusPending,
		PriceSPY: 11000,
	}
	require.NoError(t, f.db.Create(pending).Error)

	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, pending.ID)
	requireCode(t, err, apperr.ErrCodeDateConflict)
	assert.Equal(t, int64(100000), f.balance(tenant))

	_, err = f.svc.Bookings.Create(f.ctx, tenant, dto.CreateBookingRequest{
		ApartmentID: apt.ID, CheckIn: "2025-06-02", CheckOut: "2025-06-03",
	})
	requireCode(t, err, apperr.ErrCodeDateConflict)
}

func TestApproveBooking_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	owner, stranger := f.landlord(), f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)
	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")

	_, _, err := f.svc.Bookings.Approve(f.ctx, stranger, b.ID)
	requireCode(t, err, apperr.ErrCodeForbidden)

	_, _, err = f.svc.Bookings.Approve(f.ctx, tenant, b.ID)
	requireCode(t, err, apperr.ErrCodeForbidden)

	_, _, err = f.svc.Bookings.Approve(f.ctx, owner, 9999)
	requireCode(t, err, apperr.ErrCodeNotFound)
}

func TestApproveBooking_StayAlreadyStarted(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(tenant, 22000)
	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")

	f.clock.Advance(20 * 24 * time.Hour) // 2025-06-09
	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	requireCode(t, err, apperr.ErrCodeInvalidTransition)
	assert.Equal(t, constants.BookingStatusPending, f.reload(b).Status)
	assert.Equal(t, int64(22000), f.balance(tenant))
	assert.Equal(t, int64(0), f.balance(owner))
}

func TestRejectBooking(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)
	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")

	rejected, err := f.svc.Bookings.Reject(f.ctx, owner, b.ID, "dates blocked")
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusRejected, rejected.Status)

	b = f.reload(b)
	assert.Equal(t, constants.BookingStatusRejected, b.Status)
	assert.Equal(t, "dates blocked", b.RejectionReason)

	_, err = f.svc.Bookings.Reject(f.ctx, owner, b.ID, "again")
	requireCode(t, err, apperr.ErrCodeInvalidTransition)
}

func TestCancelBooking_RefundsConfirmedStay(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(tenant, 30000)

	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")
	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Bookings.Cancel(f.ctx, tenant, b.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(30000), f.balance(tenant))
	assert.Equal(t, int64(0), f.balance(owner))

	var refunds int64
	require.NoError(t, f.db.Model(&models.WalletTransaction{}).
		Where("booking_id = ? AND type IN ?", b.ID, []string{constants.TxRefundCredit, constants.TxRefundDebit}).
		Count(&refunds).Error)
	assert.Equal(t, int64(2), refunds)
}

func TestCancelBooking_Rules(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant, other := f.tenant(), f.tenant()
	apt := f.apartment(owner, 50)
	f.fund(tenant, 30000)

	pending := f.book(tenant, apt, "2025-07-01", "2025-07-02")
	_, err := f.svc.Bookings.Cancel(f.ctx, other, pending.ID)
	requireCode(t, err, apperr.ErrCodeForbidden)

	cancelled, err := f.svc.Bookings.Cancel(f.ctx, tenant, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(30000), f.balance(tenant))

	b := f.book(tenant, apt, "2025-06-01", "2025-06-05")
	_, _, err = f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	require.NoError(t, err)

	f.clock.Advance(12 * 24 * time.Hour) // 2025-06-01, the stay has started
	_, err = f.svc.Bookings.Cancel(f.ctx, tenant, b.ID)
	requireCode(t, err, apperr.ErrCodeInvalidTransition)
	assert.Equal(t, int64(8000), f.balance(tenant))
}

func TestBookedDates_ListsConfirmedOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant, other := f.tenant(), f.tenant()
	apt := f.apartment(owner, 10)
	f.fund(tenant, 10000)

	a := f.book(tenant, apt, "2025-06-01", "2025-06-05")
	f.book(other, apt, "2025-06-10", "2025-06-12")
	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, a.ID)
	require.NoError(t, err)

	ranges, err := f.svc.Bookings.BookedDates(f.ctx, apt.ID)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, dto.DateRange{BookingID: a.ID, CheckIn: "2025-06-01", CheckOut: "2025-06-05"}, ranges[0])

	_, err = f.svc.Bookings.BookedDates(f.ctx, 9999)
	requireCode(t, err, apperr.ErrCodeNotFound)
}

func TestBookingLists(t *testing.T) {
	f := newFixture(t)
	owner, otherOwner := f.landlord(), f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 10)
	otherApt := f.apartment(otherOwner, 10)

	f.book(tenant, apt, "2025-06-01", "2025-06-05")
	f.book(tenant, otherApt, "2025-06-01", "2025-06-05")

	mine, total, err := f.svc.Bookings.ListForTenant(f.ctx, tenant, "", types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	incoming, total, err := f.svc.Bookings.ListForLandlord(f.ctx, owner, constants.BookingStatusPending, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, incoming, 1)
	assert.Equal(t, apt.ID, incoming[0].ApartmentID)

	_, err = f.svc.Bookings.Get(f.ctx, otherOwner, incoming[0].ID)
	requireCode(t, err, apperr.ErrCodeForbidden)
	got, err := f.svc.Bookings.Get(f.ctx, owner, incoming[0].ID)
	require.NoError(t, err)
	assert.Equal(t, apt.Title, got.Apartment.Title)
}

func TestBookingJobs(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant, other := f.tenant(), f.tenant()
	apt := f.apartment(owner, 10)
	f.fund(tenant, 10000)

	stay := f.book(tenant, apt, "2025-06-01", "2025-06-05")
	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, stay.ID)
	require.NoError(t, err)
	stale := f.book(other, apt, "2025-05-25", "2025-05-27")
	later := f.book(other, apt, "2025-07-01", "2025-07-03")

	f.clock.Advance(16 * 24 * time.Hour) // 2025-06-05

	completed, err := f.svc.Bookings.CompleteFinished(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)
	assert.Equal(t, constants.BookingStatusCompleted, f.reload(stay).Status)

	expired, err := f.svc.Bookings.ExpireStale(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, constants.BookingStatusRejected, f.reload(stale).Status)
	assert.Equal(t, constants.BookingStatusPending, f.reload(later).Status)
}
