package services

import (
	"context"
	"strings"

	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"
	"rentspace/validator"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// searchCandidateLimit caps the rows scored in memory for a text search.
const searchCandidateLimit = 500

type ApartmentService struct {
	db     *gorm.DB
	cache  Cache
	logger zerolog.Logger
}

type ApartmentServiceOptions struct {
	DB     *gorm.DB
	Cache  Cache
	Logger zerolog.Logger
}

func NewApartmentService(opts ApartmentServiceOptions) *ApartmentService {
	s := &ApartmentService{
		db:     opts.DB,
		cache:  opts.Cache,
		logger: opts.Logger.With().Str("component", "apartment").Logger(),
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	return s
}

func applyApartmentRequest(a *models.Apartment, req dto.ApartmentRequest) {
	a.Title = strings.TrimSpace(req.Title)
	a.Description = req.Description
	a.Governorate = strings.TrimSpace(req.Governorate)
	a.City = strings.TrimSpace(req.City)
	a.Address = req.Address
	a.Rooms = req.Rooms
	a.MaxGuests = req.MaxGuests
	a.PricePerNight = req.PricePerNight
}

// Create lists a new apartment for admin review.
func (s *ApartmentService) Create(ctx context.Context, p types.Principal, req dto.ApartmentRequest) (*models.Apartment, error) {
	if !p.IsLandlord() {
		return nil, apperr.Forbidden("only landlords can list apartments")
	}
	if err := validator.ValidatePrice(req.PricePerNight); err != nil {
		return nil, err
	}
	apt := &models.Apartment{
		OwnerID:     p.UserID,
		Status:      constants.ApartmentStatusPending,
		IsAvailable: true,
	}
	applyApartmentRequest(apt, req)
	if err := s.db.WithContext(ctx).Create(apt).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info().Uint("apartment_id", apt.ID).Uint("owner_id", p.UserID).Msg("apartment created")
	return apt, nil
}

func (s *ApartmentService) ownedTx(tx *gorm.DB, p types.Principal, id uint) (*models.Apartment, error) {
	apt, err := lockApartmentTx(tx, id)
	if err != nil {
		return nil, err
	}
	if apt.OwnerID != p.UserID {
		return nil, apperr.Forbidden("you do not own this apartment")
	}
	return apt, nil
}

// Update edits an owned apartment. Editing a rejected listing resubmits it.
func (s *ApartmentService) Update(ctx context.Context, p types.Principal, id uint, req dto.ApartmentRequest) (*models.Apartment, error) {
	if err := validator.ValidatePrice(req.PricePerNight); err != nil {
		return nil, err
	}
	var apt *models.Apartment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if apt, err = s.ownedTx(tx, p, id); err != nil {
			return err
		}
		applyApartmentRequest(apt, req)
		if apt.Status == constants.ApartmentStatusRejected {
			apt.Status = constants.ApartmentStatusPending
			apt.RejectReason = ""
		}
		return tx.Save(apt).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "apartment")
	}
	s.invalidate(ctx, id)
	return apt, nil
}

// SetAvailability toggles whether new bookings are accepted.
func (s *ApartmentService) SetAvailability(ctx context.Context, p types.Principal, id uint, available bool) (*models.Apartment, error) {
	var apt *models.Apartment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if apt, err = s.ownedTx(tx, p, id); err != nil {
			return err
		}
		apt.IsAvailable = available
		return tx.Model(apt).Update("is_available", available).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "apartment")
	}
	s.invalidate(ctx, id)
	return apt, nil
}

// Get returns an apartment. Listings that are not approved are only visible
// to their owner and admins.
func (s *ApartmentService) Get(ctx context.Context, id uint, viewer *types.Principal) (*models.Apartment, error) {
	var apt models.Apartment
	key := apartmentKey(id)
	hit, err := s.cache.Get(ctx, key, &apt)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if !hit {
		if err := s.db.WithContext(ctx).Preload("Owner").First(&apt, id).Error; err != nil {
			return nil, apperr.FromDB(err, "apartment")
		}
		if apt.Status == constants.ApartmentStatusApproved {
			if err := s.cache.Set(ctx, key, &apt, apartmentDetailTTL); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
	}

	if apt.Status != constants.ApartmentStatusApproved {
		if viewer == nil || (viewer.UserID != apt.OwnerID && !viewer.IsAdmin()) {
			return nil, apperr.NotFound("apartment")
		}
	}
	return &apt, nil
}

// SearchResult is a page of public listings.
type SearchResult struct {
	Apartments  []models.Apartment
	Total       int64
	Suggestions []string
}

func applyApartmentFilter(q *gorm.DB, f dto.ApartmentFilter) *gorm.DB {
	if f.Governorate != "" {
		q = q.Where("LOWER(governorate) = ?", strings.ToLower(f.Governorate))
	}
	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.MinPrice > 0 {
		q = q.Where("price_per_night >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_per_night <= ?", f.MaxPrice)
	}
	if f.Rooms > 0 {
		q = q.Where("rooms >= ?", f.Rooms)
	}
	if f.Guests > 0 {
		q = q.Where("max_guests >= ?", f.Guests)
	}
	return q
}

// Search lists approved, available apartments. With a text query the
// filtered candidates are ranked by fuzzy relevance; when nothing matches,
// close location names are suggested.
func (s *ApartmentService) Search(ctx context.Context, f dto.ApartmentFilter, page types.Page) (*SearchResult, error) {
	base := s.db.WithContext(ctx).Model(&models.Apartment{}).
		Where("status = ? AND is_available = ?", constants.ApartmentStatusApproved, true)
	base = applyApartmentFilter(base, f)

	if strings.TrimSpace(f.Query) == "" {
		var total int64
		if err := base.Count(&total).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		var rows []models.Apartment
		if err := base.Preload("Owner").Order("created_at DESC, id DESC").
			Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		return &SearchResult{Apartments: rows, Total: total}, nil
	}

	var candidates []models.Apartment
	if err := base.Preload("Owner").Order("id").Limit(searchCandidateLimit).Find(&candidates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	ranked := rankApartments(f.Query, candidates)

	result := &SearchResult{Total: int64(len(ranked))}
	start := page.Offset()
	end := start + page.Limit
	if start > len(ranked) {
		start = len(ranked)
	}
	if end > len(ranked) {
		end = len(ranked)
	}
	for _, r := range ranked[start:end] {
		result.Apartments = append(result.Apartments, r.Apartment)
	}

	if len(ranked) == 0 {
		locations, err := s.knownLocations(ctx)
		if err != nil {
			return nil, err
		}
		result.Suggestions = suggestLocations(f.Query, locations)
	}
	return result, nil
}

// knownLocations lists the cities and governorates of approved listings.
func (s *ApartmentService) knownLocations(ctx context.Context) ([]string, error) {
	var locations []string
	if hit, err := s.cache.Get(ctx, locationsKey, &locations); err == nil && hit {
		return locations, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("key", locationsKey).Msg("cache read failed")
	}

	var cities, governorates []string
	q := s.db.WithContext(ctx).Model(&models.Apartment{}).Where("status = ?", constants.ApartmentStatusApproved)
	if err := q.Distinct().Pluck("city", &cities).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	q = s.db.WithContext(ctx).Model(&models.Apartment{}).Where("status = ?", constants.ApartmentStatusApproved)
	if err := q.Distinct().Pluck("governorate", &governorates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	locations = append(cities, governorates...)
	if err := s.cache.Set(ctx, locationsKey, locations, locationsTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", locationsKey).Msg("cache write failed")
	}
	return locations, nil
}

// ListOwned lists p's apartments in any status.
func (s *ApartmentService) ListOwned(ctx context.Context, p types.Principal, page types.Page) ([]models.Apartment, int64, error) {
	if !p.IsLandlord() {
		return nil, 0, apperr.Forbidden("only landlords own apartments")
	}
	q := s.db.WithContext(ctx).Model(&models.Apartment{}).Where("owner_id = ?", p.UserID)
	return s.list(q, page)
}

// ListByStatus is the admin review queue.
func (s *ApartmentService) ListByStatus(ctx context.Context, p types.Principal, status string, page types.Page) ([]models.Apartment, int64, error) {
	if err := requireAdmin(p); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.Apartment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return s.list(q.Preload("Owner"), page)
}

func (s *ApartmentService) list(q *gorm.DB, page types.Page) ([]models.Apartment, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var rows []models.Apartment
	if err := q.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rows, total, nil
}

// Approve publishes a pending listing.
func (s *ApartmentService) Approve(ctx context.Context, p types.Principal, id uint) (*models.Apartment, error) {
	return s.review(ctx, p, id, constants.ApartmentStatusApproved, "")
}

// Reject refuses a pending listing with a reason shown to the owner.
func (s *ApartmentService) Reject(ctx context.Context, p types.Principal, id uint, reason string) (*models.Apartment, error) {
	return s.review(ctx, p, id, constants.ApartmentStatusRejected, reason)
}

func (s *ApartmentService) review(ctx context.Context, p types.Principal, id uint, status, reason string) (*models.Apartment, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	var apt *models.Apartment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if apt, err = lockApartmentTx(tx, id); err != nil {
			return err
		}
		if apt.Status != constants.ApartmentStatusPending {
			return apperr.InvalidTransition("only pending apartments can be reviewed, this one is " + apt.Status)
		}
		apt.Status = status
		apt.RejectReason = reason
		return tx.Model(apt).Updates(map[string]interface{}{
			"status":        status,
			"reject_reason": reason,
		}).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "apartment")
	}
	s.invalidate(ctx, id)
	s.logger.Info().Uint("apartment_id", id).Str("status", status).Uint("admin_id", p.UserID).Msg("apartment reviewed")
	return apt, nil
}

func (s *ApartmentService) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, apartmentKey(id), locationsKey); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}
