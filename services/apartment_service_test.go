package services

import (
	"context"
	"testing"
	"time"

	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache stores JSON like RedisCache does, without expiry.
type memoryCache map[string][]byte

func (m memoryCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	data, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, target)
}

func (m memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = data
	return nil
}

func (m memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func apartmentRequest(title, city string) dto.ApartmentRequest {
	return dto.ApartmentRequest{
		Title:         title,
		Description:   "Bright rooms with a balcony",
		Governorate:   "Damascus",
		City:          city,
		Rooms:         2,
		MaxGuests:     3,
		PricePerNight: 40,
	}
}

func TestApartmentLifecycle(t *testing.T) {
	f := newFixture(t)
	owner, other := f.landlord(), f.landlord()
	admin := f.admin()

	_, err := f.svc.Apartments.Create(f.ctx, f.tenant(), apartmentRequest("Loft", "Mezzeh"))
	requireCode(t, err, apperr.ErrCodeForbidden)

	pricey := apartmentRequest("Palace", "Mezzeh")
	pricey.PricePerNight = 1e17
	_, err = f.svc.Apartments.Create(f.ctx, owner, pricey)
	requireCode(t, err, apperr.ErrCodeValidation)

	apt, err := f.svc.Apartments.Create(f.ctx, owner, apartmentRequest("  Loft  ", "Mezzeh"))
	require.NoError(t, err)
	assert.Equal(t, constants.ApartmentStatusPending, apt.Status)
	assert.Equal(t, "Loft", apt.Title)
	assert.True(t, apt.IsAvailable)

	_, err = f.svc.Apartments.Get(f.ctx, apt.ID, nil)
	requireCode(t, err, apperr.ErrCodeNotFound)
	_, err = f.svc.Apartments.Get(f.ctx, apt.ID, &other)
	requireCode(t, err, apperr.ErrCodeNotFound)
	_, err = f.svc.Apartments.Get(f.ctx, apt.ID, &owner)
	require.NoError(t, err)
	_, err = f.svc.Apartments.Get(f.ctx, apt.ID, &admin)
	require.NoError(t, err)

	queue, total, err := f.svc.Apartments.ListByStatus(f.ctx, admin, constants.ApartmentStatusPending, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, apt.ID, queue[0].ID)

	_, _, err = f.svc.Apartments.ListByStatus(f.ctx, owner, "", types.Page{Limit: 10})
	requireCode(t, err, apperr.ErrCodeForbidden)

	rejected, err := f.svc.Apartments.Reject(f.ctx, admin, apt.ID, "photos missing")
	require.NoError(t, err)
	assert.Equal(t, "photos missing", rejected.RejectReason)

	_, err = f.svc.Apartments.Update(f.ctx, other, apt.ID, apartmentRequest("Mine now", "Mezzeh"))
	requireCode(t, err, apperr.ErrCodeForbidden)

	resubmitted, err := f.svc.Apartments.Update(f.ctx, owner, apt.ID, apartmentRequest("Loft with photos", "Mezzeh"))
	require.NoError(t, err)
	assert.Equal(t, constants.ApartmentStatusPending, resubmitted.Status)
	assert.Empty(t, resubmitted.RejectReason)

	approved, err := f.svc.Apartments.Approve(f.ctx, admin, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ApartmentStatusApproved, approved.Status)

	_, err = f.svc.Apartments.Approve(f.ctx, admin, apt.ID)
	requireCode(t, err, apperr.ErrCodeInvalidTransition)

	public, err := f.svc.Apartments.Get(f.ctx, apt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Loft with photos", public.Title)

	owned, total, err := f.svc.Apartments.ListOwned(f.ctx, owner, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, apt.ID, owned[0].ID)
}

func TestApartmentSearch_Filters(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	sunny := f.apartment(owner, 40)
	homs := f.apartment(owner, 80)
	require.NoError(t, f.db.Model(homs).Updates(map[string]interface{}{
		"title": "Stone house", "city": "Homs", "governorate": "Homs", "rooms": 3,
	}).Error)
	pending := f.apartment(owner, 30)
	require.NoError(t, f.db.Model(pending).Update("status", constants.ApartmentStatusPending).Error)

	page := types.Page{Limit: 10}
	res, err := f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{MaxPrice: 50}, page)
	require.NoError(t, err)
	require.Len(t, res.Apartments, 1)
	assert.Equal(t, sunny.ID, res.Apartments[0].ID)

	res, err = f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{Governorate: "HOMS", Rooms: 3}, page)
	require.NoError(t, err)
	require.Len(t, res.Apartments, 1)
	assert.Equal(t, homs.ID, res.Apartments[0].ID)

	_, err = f.svc.Apartments.SetAvailability(f.ctx, owner, sunny.ID, false)
	require.NoError(t, err)
	res, err = f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, homs.ID, res.Apartments[0].ID)
}

func TestApartmentSearch_Query(t *testing.T) {
	f := newFixture(t)
	owner := f.landlord()
	sunny := f.apartment(owner, 40)
	homs := f.apartment(owner, 80)
	require.NoError(t, f.db.Model(homs).Updates(map[string]interface{}{
		"title": "Stone house", "city": "Homs", "governorate": "Homs",
	}).Error)

	page := types.Page{Limit: 10}
	res, err := f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{Query: "mezze"}, page)
	require.NoError(t, err)
	require.Len(t, res.Apartments, 1)
	assert.Equal(t, sunny.ID, res.Apartments[0].ID)
	assert.Empty(t, res.Suggestions)

	res, err = f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{Query: "stone"}, page)
	require.NoError(t, err)
	require.Len(t, res.Apartments, 1)
	assert.Equal(t, homs.ID, res.Apartments[0].ID)

	res, err = f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{Query: "damasqqus"}, page)
	require.NoError(t, err)
	assert.Empty(t, res.Apartments)
	assert.Zero(t, res.Total)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Damascus", res.Suggestions[0])

	res, err = f.svc.Apartments.Search(f.ctx, dto.ApartmentFilter{Query: "flat house"}, types.Page{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Apartments, 1)
}

func TestApartmentCache(t *testing.T) {
	f := newFixture(t)
	cache := memoryCache{}
	svc := NewApartmentService(ApartmentServiceOptions{DB: f.db, Cache: cache, Logger: zerolog.Nop()})
	owner := f.landlord()
	apt := f.apartment(owner, 40)

	_, err := svc.Get(f.ctx, apt.ID, nil)
	require.NoError(t, err)
	assert.Contains(t, cache, apartmentKey(apt.ID))

	require.NoError(t, f.db.Model(&models.Apartment{}).Where("id = ?", apt.ID).Update("title", "Changed behind the cache").Error)
	cached, err := svc.Get(f.ctx, apt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sunny flat", cached.Title)

	_, err = svc.Search(f.ctx, dto.ApartmentFilter{Query: "nowhere-at-all"}, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, cache, locationsKey)

	_, err = svc.Update(f.ctx, owner, apt.ID, apartmentRequest("Renamed", "Mezzeh"))
	require.NoError(t, err)
	assert.NotContains(t, cache, apartmentKey(apt.ID))
	assert.NotContains(t, cache, locationsKey)

	fresh, err := svc.Get(f.ctx, apt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh.Title)
}
