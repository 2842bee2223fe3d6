package services

import (
	"context"
	"errors"

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

// RentalApplicationService drives rental applications and their
// modifications. Approval produces a confirmed booking through
// BookingService, so both flows share one booking state machine.
type RentalApplicationService struct {
	db       *gorm.DB
	bookings *BookingService
	logger   zerolog.Logger
	clock    clockwork.Clock
}

type RentalApplicationServiceOptions struct {
	DB       *gorm.DB
	Bookings *BookingService
	Logger   zerolog.Logger
	Clock    clockwork.Clock
}

func NewRentalApplicationService(opts RentalApplicationServiceOptions) *RentalApplicationService {
	s := &RentalApplicationService{
		db:       opts.DB,
		bookings: opts.Bookings,
		logger:   opts.Logger.With().Str("component", "rental_application").Logger(),
		clock:    opts.Clock,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

func transitionErr(err error) error {
	return apperr.InvalidTransition(err.Error())
}

// Submit files a new application. A tenant gets at most
// constants.MaxApplicationAttempts submissions per apartment, whatever
// their outcome.
func (s *RentalApplicationService) Submit(ctx context.Context, p types.Principal, req dto.RentalApplicationRequest) (*models.RentalApplication, error) {
	if !p.IsTenant() {
		return nil, apperr.Forbidden("only tenants can apply for apartments")
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

	var attempts int64
	if err := db.Model(&models.RentalApplication{}).
		Where("user_id = ? AND apartment_id = ?", p.UserID, apt.ID).
		Count(&attempts).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if attempts >= constants.MaxApplicationAttempts {
		return nil, apperr.NewAppError(apperr.ErrCodeApplicationLimit, "you have reached the maximum number of applications for this apartment", nil).
			WithDetails(map[string]any{"max_attempts": constants.MaxApplicationAttempts})
	}

	app := &models.RentalApplication{
		UserID:      p.UserID,
		ApartmentID: apt.ID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Message:     req.Message,
		Status:      constants.ApplicationStatusPending,
	}
	if err := db.Create(app).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info().Uint("application_id", app.ID).Uint("apartment_id", apt.ID).Int64("attempt", attempts+1).Msg("application submitted")
	return app, nil
}

// landlordApplicationTx loads the application and locks its apartment,
// checking that p owns it.
func (s *RentalApplicationService) landlordApplicationTx(tx *gorm.DB, p types.Principal, appID uint) (*models.RentalApplication, *models.Apartment, error) {
	if !p.IsLandlord() {
		return nil, nil, apperr.Forbidden("only landlords can decide on applications")
	}
	var app models.RentalApplication
	if err := tx.First(&app, appID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "rental application")
	}
	apt, err := ownedApartmentTx(tx, p, app.ApartmentID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Clauses(forUpdate).First(&app, appID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "rental application")
	}
	return &app, apt, nil
}

// createConfirmedBookingTx books the application's current stay and
// confirms it with payment.
func (s *RentalApplicationService) createConfirmedBookingTx(tx *gorm.DB, app *models.RentalApplication, apt *models.Apartment) (*models.Booking, int64, error) {
	booking := builders.NewBookingBuilder().
		WithTenant(app.UserID).
		WithApartment(apt).
		WithDates(app.CheckIn, app.CheckOut).
		FromApplication(app.ID).
		Build(USDToSPY)
	if err := tx.Create(booking).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	rejected, err := s.bookings.confirmTx(tx, booking, apt)
	if err != nil {
		return nil, 0, err
	}
	app.BookingID = &booking.ID
	return booking, rejected, nil
}

// Approve accepts a pending application and confirms a booking for it.
func (s *RentalApplicationService) Approve(ctx context.Context, p types.Principal, appID uint) (*models.RentalApplication, error) {
	var app *models.RentalApplication
	var apartmentID uint
	var rejected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var apt *models.Apartment
		var err error
		app, apt, err = s.landlordApplicationTx(tx, p, appID)
		if err != nil {
			return err
		}
		apartmentID = apt.ID
		if err := app.Apply(models.TransitionApprove); err != nil {
			return transitionErr(err)
		}
		if _, rejected, err = s.createConfirmedBookingTx(tx, app, apt); err != nil {
			return err
		}
		return saveApplicationTx(tx, app)
	})
	if err != nil {
		return nil, err
	}

	s.bookings.invalidate(ctx, apartmentID)
	metrics.BookingsAutoRejected.Add(float64(rejected))
	s.logger.Info().Uint("application_id", app.ID).Uint("booking_id", *app.BookingID).Msg("application approved")
	return app, nil
}

// Reject declines a pending application.
func (s *RentalApplicationService) Reject(ctx context.Context, p types.Principal, appID uint) (*models.RentalApplication, error) {
	var app *models.RentalApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, _, err = s.landlordApplicationTx(tx, p, appID)
		if err != nil {
			return err
		}
		if err := app.Apply(models.TransitionReject); err != nil {
			return transitionErr(err)
		}
		return saveApplicationTx(tx, app)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("application_id", app.ID).Msg("application rejected")
	return app, nil
}

// ProposeModification records a tenant's change request on a pending or
// approved application.
func (s *RentalApplicationService) ProposeModification(ctx context.Context, p types.Principal, appID uint, req dto.ModificationRequest) (*models.RentalApplication, *models.RentalApplicationModification, error) {
	checkIn, checkOut, err := validator.ValidateStay(req.CheckIn, req.CheckOut, s.clock.Now())
	if err != nil {
		return nil, nil, err
	}

	var app models.RentalApplication
	mod := &models.RentalApplicationModification{CheckIn: checkIn, CheckOut: checkOut, Message: req.Message}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&app, appID).Error; err != nil {
			return apperr.FromDB(err, "rental application")
		}
		if app.UserID != p.UserID {
			return apperr.Forbidden("you can only modify your own applications")
		}
		if err := app.ProposeModification(mod); err != nil {
			return transitionErr(err)
		}
		if err := tx.Create(mod).Error; err != nil {
			return apperr.Internal(err)
		}
		return saveApplicationTx(tx, &app)
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Uint("application_id", app.ID).Uint("modification_id", mod.ID).Msg("modification proposed")
	return &app, mod, nil
}

func (s *RentalApplicationService) modificationTx(tx *gorm.DB, appID, modID uint) (*models.RentalApplicationModification, error) {
	var mod models.RentalApplicationModification
	if err := tx.Clauses(forUpdate).
		Where("id = ? AND rental_application_id = ?", modID, appID).
		First(&mod).Error; err != nil {
		return nil, apperr.FromDB(err, "modification")
	}
	return &mod, nil
}

// ApproveModification applies the proposed stay. A confirmed booking linked
// to the application is rescheduled; otherwise a new booking is confirmed.
func (s *RentalApplicationService) ApproveModification(ctx context.Context, p types.Principal, appID, modID uint) (*models.RentalApplication, error) {
	var app *models.RentalApplication
	var apartmentID uint
	var rejected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var apt *models.Apartment
		var err error
		app, apt, err = s.landlordApplicationTx(tx, p, appID)
		if err != nil {
			return err
		}
		apartmentID = apt.ID
		mod, err := s.modificationTx(tx, appID, modID)
		if err != nil {
			return err
		}
		if err := app.ApproveModification(mod); err != nil {
			return transitionErr(err)
		}

		var booking *models.Booking
		if app.HasBooking() {
			if booking, err = lockBookingTx(tx, *app.BookingID); err != nil {
				return err
			}
		}
		if booking != nil && booking.Status == constants.BookingStatusConfirmed {
			rejected, err = s.bookings.rescheduleTx(tx, booking, apt, app.CheckIn, app.CheckOut)
		} else {
			_, rejected, err = s.createConfirmedBookingTx(tx, app, apt)
		}
		if err != nil {
			return err
		}

		if err := tx.Model(mod).Update("status", mod.Status).Error; err != nil {
			return apperr.Internal(err)
		}
		return saveApplicationTx(tx, app)
	})
	if err != nil {
		return nil, err
	}

	s.bookings.invalidate(ctx, apartmentID)
	metrics.BookingsAutoRejected.Add(float64(rejected))
	s.logger.Info().Uint("application_id", app.ID).Uint("modification_id", modID).Msg("modification approved")
	return app, nil
}

// RejectModification discards a proposal and restores the application's
// previous status.
func (s *RentalApplicationService) RejectModification(ctx context.Context, p types.Principal, appID, modID uint) (*models.RentalApplication, error) {
	var app *models.RentalApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, _, err = s.landlordApplicationTx(tx, p, appID)
		if err != nil {
			return err
		}
		mod, err := s.modificationTx(tx, appID, modID)
		if err != nil {
			return err
		}
		if err := app.RejectModification(mod); err != nil {
			return transitionErr(err)
		}
		if err := tx.Model(mod).Update("status", mod.Status).Error; err != nil {
			return apperr.Internal(err)
		}
		return saveApplicationTx(tx, app)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("application_id", app.ID).Uint("modification_id", modID).Str("status", app.Status).Msg("modification rejected")
	return app, nil
}

// Get returns an application visible to its tenant, the apartment owner or an admin.
func (s *RentalApplicationService) Get(ctx context.Context, p types.Principal, appID uint) (*models.RentalApplication, error) {
	var app models.RentalApplication
	err := s.db.WithContext(ctx).
		Preload("Apartment").
		Preload("Modifications", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&app, appID).Error
	if err != nil {
		return nil, apperr.FromDB(err, "rental application")
	}
	if app.UserID != p.UserID && app.Apartment.OwnerID != p.UserID && !p.IsAdmin() {
		return nil, apperr.Forbidden("you cannot view this application")
	}
	return &app, nil
}

// ListForTenant lists p's applications.
func (s *RentalApplicationService) ListForTenant(ctx context.Context, p types.Principal, status string, page types.Page) ([]models.RentalApplication, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.RentalApplication{}).Where("user_id = ?", p.UserID)
	return s.list(q, status, page)
}

// ListForLandlord lists applications on p's apartments.
func (s *RentalApplicationService) ListForLandlord(ctx context.Context, p types.Principal, status string, page types.Page) ([]models.RentalApplication, int64, error) {
	if !p.IsLandlord() {
		return nil, 0, apperr.Forbidden("only landlords can list incoming applications")
	}
	q := s.db.WithContext(ctx).Model(&models.RentalApplication{}).
		Where("apartment_id IN (?)", s.db.Model(&models.Apartment{}).Select("id").Where("owner_id = ?", p.UserID))
	return s.list(q, status, page)
}

func (s *RentalApplicationService) list(q *gorm.DB, status string, page types.Page) ([]models.RentalApplication, int64, error) {
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var rows []models.RentalApplication
	if err := q.Preload("Modifications", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rows, total, nil
}

// ExpireStale closes what can no longer happen. A pending modification
// whose proposed or current check-in has passed is rejected and its
// application reverts to the previous status, so a confirmed stay keeps
// its application approved. Pending applications whose check-in has
// passed are then rejected. It returns the number of applications changed.
func (s *RentalApplicationService) ExpireStale(ctx context.Context) (int64, error) {
	today := utils.Day(s.clock.Now())
	touched := make(map[uint]bool)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staleMods := tx.Model(&models.RentalApplicationModification{}).
			Select("rental_application_id").
			Where("status = ? AND check_in < ?", constants.ModificationStatusPending, today)
		var modified []models.RentalApplication
		if err := tx.Clauses(forUpdate).
			Where("status = ? AND (check_in < ? OR id IN (?))",
				constants.ApplicationStatusModifiedPending, today, staleMods).
			Find(&modified).Error; err != nil {
			return err
		}
		for i := range modified {
			app := &modified[i]
			var mod models.RentalApplicationModification
			err := tx.Clauses(forUpdate).
				Where("rental_application_id = ? AND status = ?", app.ID, constants.ModificationStatusPending).
				Order("id DESC").
				First(&mod).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn().Uint("application_id", app.ID).Msg("modified application has no pending modification")
				continue
			}
			if err != nil {
				return err
			}
			if err := app.RejectModification(&mod); err != nil {
				continue
			}
			if err := tx.Model(&mod).Update("status", mod.Status).Error; err != nil {
				return err
			}
			if err := saveApplicationTx(tx, app); err != nil {
				return err
			}
			touched[app.ID] = true
		}

		var pending []models.RentalApplication
		if err := tx.Clauses(forUpdate).
			Where("status = ? AND check_in < ?", constants.ApplicationStatusPending, today).
			Find(&pending).Error; err != nil {
			return err
		}
		for i := range pending {
			if err := pending[i].Apply(models.TransitionExpire); err != nil {
				continue
			}
			if err := saveApplicationTx(tx, &pending[i]); err != nil {
				return err
			}
			touched[pending[i].ID] = true
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return int64(len(touched)), nil
}

func saveApplicationTx(tx *gorm.DB, app *models.RentalApplication) error {
	err := tx.Model(&models.RentalApplication{}).Where("id = ?", app.ID).Updates(map[string]interface{}{
		"status":     app.Status,
		"check_in":   app.CheckIn,
		"check_out":  app.CheckOut,
		"message":    app.Message,
		"booking_id": app.BookingID,
	}).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
