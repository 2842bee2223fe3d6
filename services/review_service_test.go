package services

import (
	"testing"

	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedStay books, pays and completes a stay for tenant.
func (f *fixture) completedStay(owner, tenant types.Principal, apt *models.Apartment, checkIn, checkOut string) *models.Booking {
	f.t.Helper()
	b := f.book(tenant, apt, checkIn, checkOut)
	_, _, err := f.svc.Bookings.Approve(f.ctx, owner, b.ID)
	require.NoError(f.t, err)
	require.NoError(f.t, f.db.Model(b).Update("status", constants.BookingStatusCompleted).Error)
	return f.reload(b)
}

func TestReview_OnlyCompletedBookings(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 10)
	f.fund(tenant, 100000)

	pending := f.book(tenant, apt, "2025-08-01", "2025-08-02")
	_, err := f.svc.Reviews.Create(f.ctx, tenant, pending.ID, dto.CreateReviewRequest{Rating: 5})
	requireCode(t, err, apperr.ErrCodeReviewNotAllowed)

	_, _, err = f.svc.Bookings.Approve(f.ctx, owner, pending.ID)
	require.NoError(t, err)
	_, err = f.svc.Reviews.Create(f.ctx, tenant, pending.ID, dto.CreateReviewRequest{Rating: 5})
	requireCode(t, err, apperr.ErrCodeReviewNotAllowed)
}

func TestReview_OneReviewPerBooking(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant, other := f.tenant(), f.tenant()
	apt := f.apartment(owner, 10)
	f.fund(tenant, 100000)
	b := f.completedStay(owner, tenant, apt, "2025-06-01", "2025-06-03")

	_, err := f.svc.Reviews.Create(f.ctx, other, b.ID, dto.CreateReviewRequest{Rating: 4})
	requireCode(t, err, apperr.ErrCodeForbidden)

	_, err = f.svc.Reviews.Create(f.ctx, tenant, b.ID, dto.CreateReviewRequest{Rating: 6})
	requireCode(t, err, apperr.ErrCodeValidation)

	review, err := f.svc.Reviews.Create(f.ctx, tenant, b.ID, dto.CreateReviewRequest{Rating: 4, Comment: "quiet street"})
	require.NoError(t, err)
	assert.Equal(t, apt.ID, review.ApartmentID)

	_, err = f.svc.Reviews.Create(f.ctx, tenant, b.ID, dto.CreateReviewRequest{Rating: 1})
	requireCode(t, err, apperr.ErrCodeAlreadyReviewed)

	_, err = f.svc.Reviews.Create(f.ctx, tenant, 9999, dto.CreateReviewRequest{Rating: 3})
	requireCode(t, err, apperr.ErrCodeNotFound)
}

func TestReview_UpdatesApartmentRating(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	tenant := f.tenant()
	apt := f.apartment(owner, 10)
	f.fund(tenant, 100000)

	first := f.completedStay(owner, tenant, apt, "2025-06-01", "2025-06-03")
	second := f.completedStay(owner, tenant, apt, "2025-06-10", "2025-06-12")

	_, err := f.svc.Reviews.Create(f.ctx, tenant, first.ID, dto.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Reviews.Create(f.ctx, tenant, second.ID, dto.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	var reloaded models.Apartment
	require.NoError(t, f.db.First(&reloaded, apt.ID).Error)
	assert.InDelta(t, 3.5, reloaded.RatingAvg, 0.001)
	assert.Equal(t, 2, reloaded.RatingCount)

	reviews, total, err := f.svc.Reviews.ListForApartment(f.ctx, apt.ID, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, reviews, 2)
	assert.Equal(t, tenant.UserID, reviews[0].User.ID)
}
