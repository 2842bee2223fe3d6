package services

import (
	"context"
	"time"

	"rentspace/builders"
	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/metrics"
	"rentspace/models"
	"rentspace/types"
	"rentspace/utils"
	"rentspace/validator"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const autoRejectReason = "overlaps a confirmed booking"

// BookingService runs the booking lifecycle. Confirmation, payment and
// rejection of competing requests happen in a single transaction.
type BookingService struct {
	db     *gorm.DB
	wallet *WalletService
	cache  Cache
	logger zerolog.Logger
	clock  clockwork.Clock
}

type BookingServiceOptions struct {
	DB     *gorm.DB
	Wallet *WalletService
	Cache  Cache
	Logger zerolog.Logger
	Clock  clockwork.Clock
}

func NewBookingService(opts BookingServiceOptions) *BookingService {
	s := &BookingService{
		db:     opts.DB,
		wallet: opts.Wallet,
		cache:  opts.Cache,
		logger: opts.Logger.With().Str("component", "booking").Logger(),
		clock:  opts.Clock,
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

func (s *BookingService) today() time.Time {
	return utils.Day(s.clock.Now())
}

// overlapping restricts a booking query to ranges intersecting [checkIn, checkOut).
func overlapping(checkIn, checkOut time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	}
}

// hasConfirmedOverlapTx reports whether a confirmed booking other than
// excludeID intersects the range.
func hasConfirmedOverlapTx(tx *gorm.DB, apartmentID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Booking{}).
		Scopes(overlapping(checkIn, checkOut)).
		Where("apartment_id = ? AND status = ? AND id <> ?", apartmentID, constants.BookingStatusConfirmed, excludeID).
		Count(&count).Error
	return count > 0, err
}

func dateConflict() error {
	return apperr.NewAppError(apperr.ErrCodeDateConflict, "the apartment is already booked for the selected dates", nil)
}

// lockApartmentTx loads the apartment row FOR UPDATE. Every booking write
// locks the apartment before any wallet.
func lockApartmentTx(tx *gorm.DB, apartmentID uint) (*models.Apartment, error) {
	var apt models.Apartment
	if err := tx.Clauses(forUpdate).First(&apt, apartmentID).Error; err != nil {
		return nil, apperr.FromDB(err, "apartment")
	}
	return &apt, nil
}

func lockBookingTx(tx *gorm.DB, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := tx.Clauses(forUpdate).First(&b, bookingID).Error; err != nil {
		return nil, apperr.FromDB(err, "booking")
	}
	return &b, nil
}

// checkBookable validates that tenantID may book apt.
func checkBookable(apt *models.Apartment, tenantID uint) error {
	if apt.OwnerID == tenantID {
		return apperr.NewAppError(apperr.ErrCodeOwnApartment, "you cannot book your own apartment", nil)
	}
	if apt.Status != constants.ApartmentStatusApproved || !apt.IsAvailable {
		return apperr.NewAppError(apperr.ErrCodeApartmentUnavailable, "the apartment is not available for booking", nil)
	}
	return nil
}

// Create records a pending booking request for a tenant.
func (s *BookingService) Create(ctx context.Context, p types.Principal, req dto.CreateBookingRequest) (*models.Booking, error) {
	if !p.IsTenant() {
		return nil, apperr.Forbidden("only tenants can book apartments")
	}
	checkIn, checkOut, err := validator.ValidateStay(req.CheckIn, req.CheckOut, s.clock.Now())
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var apt models.Apartment
	if err := db.First(&apt, req.ApartmentID).Error; err != nil {
		return nil, apperr.FromDB(err, "apartment")
	}
	if err := checkBookable(&apt, p.UserID); err != nil {
		return nil, err
	}

	conflict, err := hasConfirmedOverlapTx(db, apt.ID, checkIn, checkOut, 0)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if conflict {
		return nil, dateConflict()
	}

	booking := builders.NewBookingBuilder().
		WithTenant(p.UserID).
		WithApartment(&apt).
		WithDates(checkIn, checkOut).
		WithPaymentDetails(req.PaymentDetails).
		Build(USDToSPY)
	if err := db.Create(booking).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	booking.Apartment = apt

	metrics.BookingsCreated.Inc()
	s.logger.Info().Uint("booking_id", booking.ID).Uint("apartment_id", apt.ID).Uint("user_id", p.UserID).Msg("booking requested")
	return booking, nil
}

// confirmTx confirms a pending booking on a locked apartment: it refuses
// stays that have already begun, re-checks availability, moves the payment
// and rejects overlapping pending requests.
// It returns the number of requests rejected.
func (s *BookingService) confirmTx(tx *gorm.DB, b *models.Booking, apt *models.Apartment) (int64, error) {
	if b.CheckIn.Before(s.today()) {
		return 0, apperr.InvalidTransition("the check-in date has already passed")
	}
	if err := b.State().Confirm(b); err != nil {
		return 0, apperr.InvalidTransition(err.Error())
	}

	conflict, err := hasConfirmedOverlapTx(tx, apt.ID, b.CheckIn, b.CheckOut, b.ID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if conflict {
		return 0, dateConflict()
	}

	bookingID := b.ID
	if b.PriceSPY > 0 {
		if err := s.wallet.TransferTx(tx, Transfer{
			FromUserID:  b.UserID,
			ToUserID:    apt.OwnerID,
			Amount:      b.PriceSPY,
			BookingID:   &bookingID,
			DebitType:   constants.TxBookingPayment,
			CreditType:  constants.TxBookingIncome,
			Description: "payment for booking " + apt.Title,
		}); err != nil {
			return 0, err
		}
	}

	if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).
		Update("status", constants.BookingStatusConfirmed).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	return rejectOverlappingPendingTx(tx, b)
}

// rescheduleTx moves a confirmed booking to a new stay on a locked
// apartment. The price difference is settled through the ledger in
// whichever direction it falls.
func (s *BookingService) rescheduleTx(tx *gorm.DB, b *models.Booking, apt *models.Apartment, checkIn, checkOut time.Time) (int64, error) {
	if b.Status != constants.BookingStatusConfirmed {
		return 0, apperr.InvalidTransition("only confirmed bookings can be rescheduled")
	}
	if checkIn.Before(s.today()) {
		return 0, apperr.InvalidTransition("the new check-in date has already passed")
	}
	conflict, err := hasConfirmedOverlapTx(tx, apt.ID, checkIn, checkOut, b.ID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if conflict {
		return 0, dateConflict()
	}

	oldPrice := b.PriceSPY
	b.CheckIn, b.CheckOut = checkIn, checkOut
	b.TotalPrice = float64(b.Nights()) * apt.PricePerNight
	b.PriceSPY = USDToSPY(b.TotalPrice)

	bookingID := b.ID
	diff := b.PriceSPY - oldPrice
	switch {
	case diff > 0:
		err = s.wallet.TransferTx(tx, Transfer{
			FromUserID:  b.UserID,
			ToUserID:    apt.OwnerID,
			Amount:      diff,
			BookingID:   &bookingID,
			DebitType:   constants.TxBookingPayment,
			CreditType:  constants.TxBookingIncome,
			Description: "extra payment for rescheduled booking",
		})
	case diff < 0:
		err = s.wallet.TransferTx(tx, Transfer{
			FromUserID:  apt.OwnerID,
			ToUserID:    b.UserID,
			Amount:      -diff,
			BookingID:   &bookingID,
			DebitType:   constants.TxRefundDebit,
			CreditType:  constants.TxRefundCredit,
			Description: "partial refund for rescheduled booking",
		})
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"check_in":    b.CheckIn,
		"check_out":   b.CheckOut,
		"total_price": b.TotalPrice,
		"price_spy":   b.PriceSPY,
	}).Error; err != nil {
		return 0, apperr.Internal(err)
	}
	return rejectOverlappingPendingTx(tx, b)
}

// rejectOverlappingPendingTx rejects pending requests on the same apartment
// that intersect the confirmed booking b.
func rejectOverlappingPendingTx(tx *gorm.DB, b *models.Booking) (int64, error) {
	res := tx.Model(&models.Booking{}).
		Scopes(overlapping(b.CheckIn, b.CheckOut)).
		Where("apartment_id = ? AND status = ? AND id <> ?", b.ApartmentID, constants.BookingStatusPending, b.ID).
		Updates(map[string]interface{}{
			"status":           constants.BookingStatusRejected,
			"rejection_reason": autoRejectReason,
		})
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// ownedApartmentTx locks the booking's apartment and checks that p owns it.
func ownedApartmentTx(tx *gorm.DB, p types.Principal, apartmentID uint) (*models.Apartment, error) {
	apt, err := lockApartmentTx(tx, apartmentID)
	if err != nil {
		return nil, err
	}
	if apt.OwnerID != p.UserID {
		return nil, apperr.Forbidden("only the apartment owner can decide on this booking")
	}
	return apt, nil
}

// Approve confirms a pending booking and charges the tenant.
func (s *BookingService) Approve(ctx context.Context, p types.Principal, bookingID uint) (*models.Booking, int64, error) {
	if !p.IsLandlord() {
		return nil, 0, apperr.Forbidden("only landlords can approve bookings")
	}

	var booking *models.Booking
	var rejected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.First(&b, bookingID).Error; err != nil {
			return apperr.FromDB(err, "booking")
		}
		apt, err := ownedApartmentTx(tx, p, b.ApartmentID)
		if err != nil {
			return err
		}
		booking, err = lockBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		rejected, err = s.confirmTx(tx, booking, apt)
		booking.Apartment = *apt
		return err
	})
	if err != nil {
		s.logFailure(err, "approve booking", bookingID)
		return nil, 0, err
	}

	s.invalidate(ctx, booking.ApartmentID)
	metrics.BookingDecisions.WithLabelValues("approved").Inc()
	metrics.BookingsAutoRejected.Add(float64(rejected))
	s.logger.Info().Uint("booking_id", booking.ID).Int64("price_spy", booking.PriceSPY).Int64("auto_rejected", rejected).Msg("booking confirmed")
	return booking, rejected, nil
}

// Reject declines a pending booking. No money moves.
func (s *BookingService) Reject(ctx context.Context, p types.Principal, bookingID uint, reason string) (*models.Booking, error) {
	if !p.IsLandlord() {
		return nil, apperr.Forbidden("only landlords can reject bookings")
	}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.First(&b, bookingID).Error; err != nil {
			return apperr.FromDB(err, "booking")
		}
		apt, err := ownedApartmentTx(tx, p, b.ApartmentID)
		if err != nil {
			return err
		}
		booking, err = lockBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		if err := booking.State().Reject(booking, reason); err != nil {
			return apperr.InvalidTransition(err.Error())
		}
		booking.Apartment = *apt
		return tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"status":           booking.Status,
			"rejection_reason": booking.RejectionReason,
		}).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "booking")
	}

	metrics.BookingDecisions.WithLabelValues("rejected").Inc()
	s.logger.Info().Uint("booking_id", booking.ID).Msg("booking rejected")
	return booking, nil
}

// Cancel lets a tenant withdraw a booking. Pending bookings are simply
// cancelled; confirmed bookings are refunded in full if the stay has not
// started.
func (s *BookingService) Cancel(ctx context.Context, p types.Principal, bookingID uint) (*models.Booking, error) {
	var booking *models.Booking
	var refunded bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.First(&b, bookingID).Error; err != nil {
			return apperr.FromDB(err, "booking")
		}
		if b.UserID != p.UserID {
			return apperr.Forbidden("you can only cancel your own bookings")
		}
		apt, err := lockApartmentTx(tx, b.ApartmentID)
		if err != nil {
			return err
		}
		booking, err = lockBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		wasConfirmed := booking.Status == constants.BookingStatusConfirmed
		if wasConfirmed && !booking.CheckIn.After(s.today()) {
			return apperr.InvalidTransition("a confirmed booking can only be cancelled before check-in")
		}
		if err := booking.State().Cancel(booking); err != nil {
			return apperr.InvalidTransition(err.Error())
		}

		if wasConfirmed && booking.PriceSPY > 0 {
			id := booking.ID
			if err := s.wallet.TransferTx(tx, Transfer{
				FromUserID:  apt.OwnerID,
				ToUserID:    booking.UserID,
				Amount:      booking.PriceSPY,
				BookingID:   &id,
				DebitType:   constants.TxRefundDebit,
				CreditType:  constants.TxRefundCredit,
				Description: "refund for cancelled booking",
			}); err != nil {
				return err
			}
			refunded = true
		}
		booking.Apartment = *apt
		return tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("status", booking.Status).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "booking")
	}

	if refunded {
		s.invalidate(ctx, booking.ApartmentID)
	}
	s.logger.Info().Uint("booking_id", booking.ID).Bool("refunded", refunded).Msg("booking cancelled")
	return booking, nil
}

// Get returns a booking visible to p: its tenant, the apartment owner or an admin.
func (s *BookingService) Get(ctx context.Context, p types.Principal, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).Preload("Apartment").First(&b, bookingID).Error; err != nil {
		return nil, apperr.FromDB(err, "booking")
	}
	if b.UserID != p.UserID && b.Apartment.OwnerID != p.UserID && !p.IsAdmin() {
		return nil, apperr.Forbidden("you cannot view this booking")
	}
	return &b, nil
}

// ListForTenant lists p's own bookings, newest first.
func (s *BookingService) ListForTenant(ctx context.Context, p types.Principal, status string, page types.Page) ([]models.Booking, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", p.UserID)
	return s.list(q, status, page)
}

// ListForLandlord lists bookings on apartments owned by p.
func (s *BookingService) ListForLandlord(ctx context.Context, p types.Principal, status string, page types.Page) ([]models.Booking, int64, error) {
	if !p.IsLandlord() {
		return nil, 0, apperr.Forbidden("only landlords can list incoming bookings")
	}
	q := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("apartment_id IN (?)", s.db.Model(&models.Apartment{}).Select("id").Where("owner_id = ?", p.UserID))
	return s.list(q, status, page)
}

func (s *BookingService) list(q *gorm.DB, status string, page types.Page) ([]models.Booking, int64, error) {
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var bookings []models.Booking
	if err := q.Preload("Apartment").Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&bookings).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return bookings, total, nil
}

// BookedDates returns the ranges held by confirmed bookings. Pending
// requests do not block dates and are not listed.
func (s *BookingService) BookedDates(ctx context.Context, apartmentID uint) ([]dto.DateRange, error) {
	var ranges []dto.DateRange
	key := bookedDatesKey(apartmentID)
	if hit, err := s.cache.Get(ctx, key, &ranges); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return ranges, nil
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Apartment{}).Where("id = ?", apartmentID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count == 0 {
		return nil, apperr.NotFound("apartment")
	}

	var bookings []models.Booking
	if err := db.Where("apartment_id = ? AND status = ?", apartmentID, constants.BookingStatusConfirmed).
		Order("check_in").Find(&bookings).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	ranges = make([]dto.DateRange, 0, len(bookings))
	for _, b := range bookings {
		ranges = append(ranges, dto.DateRange{
			BookingID: b.ID,
			CheckIn:   utils.FormatDate(b.CheckIn),
			CheckOut:  utils.FormatDate(b.CheckOut),
		})
	}

	if err := s.cache.Set(ctx, key, ranges, bookedDatesTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return ranges, nil
}

// CompleteFinished marks confirmed bookings whose check-out has passed as completed.
func (s *BookingService) CompleteFinished(ctx context.Context) (int64, error) {
	return s.sweep(ctx,
		"status = ? AND check_out <= ?", []interface{}{constants.BookingStatusConfirmed, s.today()},
		map[string]interface{}{"status": constants.BookingStatusCompleted})
}

// ExpireStale rejects pending requests whose check-in date has passed.
func (s *BookingService) ExpireStale(ctx context.Context) (int64, error) {
	return s.sweep(ctx,
		"status = ? AND check_in < ?", []interface{}{constants.BookingStatusPending, s.today()},
		map[string]interface{}{"status": constants.BookingStatusRejected, "rejection_reason": "expired"})
}

func (s *BookingService) sweep(ctx context.Context, where string, args []interface{}, updates map[string]interface{}) (int64, error) {
	db := s.db.WithContext(ctx)
	var apartmentIDs []uint
	if err := db.Model(&models.Booking{}).Where(where, args...).
		Distinct().Pluck("apartment_id", &apartmentIDs).Error; err != nil {
		return 0, apperr.Internal(err)
	}
	res := db.Model(&models.Booking{}).Where(where, args...).Updates(updates)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	s.invalidate(ctx, apartmentIDs...)
	return res.RowsAffected, nil
}

// invalidate drops cached availability for the apartments.
func (s *BookingService) invalidate(ctx context.Context, apartmentIDs ...uint) {
	keys := make([]string, 0, len(apartmentIDs))
	for _, id := range apartmentIDs {
		keys = append(keys, bookedDatesKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func (s *BookingService) logFailure(err error, action string, bookingID uint) {
	if appErr := apperr.GetAppError(err); appErr != nil && appErr.Code != apperr.ErrCodeInternal {
		s.logger.Info().Str("code", string(appErr.Code)).Uint("booking_id", bookingID).Msgf("%s refused", action)
		return
	}
	s.logger.Error().Err(err).Uint("booking_id", bookingID).Msgf("%s failed", action)
}
