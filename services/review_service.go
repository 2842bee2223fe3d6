package services

import (
	"context"
	"errors"

	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"
	"rentspace/validator"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ReviewService struct {
	db     *gorm.DB
	cache  Cache
	logger zerolog.Logger
}

type ReviewServiceOptions struct {
	DB     *gorm.DB
	Cache  Cache
	Logger zerolog.Logger
}

func NewReviewService(opts ReviewServiceOptions) *ReviewService {
	s := &ReviewService{
		db:     opts.DB,
		cache:  opts.Cache,
		logger: opts.Logger.With().Str("component", "review").Logger(),
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	return s
}

func alreadyReviewed() error {
	return apperr.NewAppError(apperr.ErrCodeAlreadyReviewed, "this booking has already been reviewed", nil)
}

// Create reviews a completed booking owned by p. Each booking takes one review.
func (s *ReviewService) Create(ctx context.Context, p types.Principal, bookingID uint, req dto.CreateReviewRequest) (*models.Review, error) {
	if err := validator.ValidateRating(req.Rating); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.First(&b, bookingID).Error; err != nil {
			return apperr.FromDB(err, "booking")
		}
		if b.UserID != p.UserID {
			return apperr.Forbidden("you can only review your own bookings")
		}
		if b.Status != constants.BookingStatusCompleted {
			return apperr.NewAppError(apperr.ErrCodeReviewNotAllowed, "only completed bookings can be reviewed", nil)
		}

		var existing int64
		if err := tx.Model(&models.Review{}).Where("booking_id = ?", b.ID).Count(&existing).Error; err != nil {
			return apperr.Internal(err)
		}
		if existing > 0 {
			return alreadyReviewed()
		}

		review = &models.Review{
			BookingID:   b.ID,
			UserID:      p.UserID,
			ApartmentID: b.ApartmentID,
			Rating:      req.Rating,
			Comment:     req.Comment,
		}
		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return alreadyReviewed()
			}
			return apperr.Internal(err)
		}
		return refreshRatingTx(tx, b.ApartmentID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, apartmentKey(review.ApartmentID)); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
	s.logger.Info().Uint("booking_id", bookingID).Int("rating", review.Rating).Msg("review created")
	return review, nil
}

// refreshRatingTx recomputes the apartment's rating aggregate.
func refreshRatingTx(tx *gorm.DB, apartmentID uint) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("apartment_id = ?", apartmentID).
		Scan(&agg).Error; err != nil {
		return apperr.Internal(err)
	}
	if err := tx.Model(&models.Apartment{}).Where("id = ?", apartmentID).Updates(map[string]interface{}{
		"rating_avg":   agg.Avg,
		"rating_count": agg.Count,
	}).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ListForApartment pages through an apartment's reviews, newest first.
func (s *ReviewService) ListForApartment(ctx context.Context, apartmentID uint, page types.Page) ([]models.Review, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Review{}).Where("apartment_id = ?", apartmentID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var rows []models.Review
	if err := q.Preload("User").Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rows, total, nil
}
