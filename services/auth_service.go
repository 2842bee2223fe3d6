package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentspace/constants"
	"rentspace/dto"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"
	"rentspace/validator"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthService handles registration and login.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	logger zerolog.Logger
}

type AuthServiceOptions struct {
	DB     *gorm.DB
	Tokens *TokenService
	Logger zerolog.Logger
}

func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		db:     opts.DB,
		tokens: opts.Tokens,
		logger: opts.Logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a pending account. A phone number belonging to a
// rejected account re-opens that account as pending with the new details.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := validator.ValidateRole(req.Role); err != nil {
		return nil, err
	}
	if err := validator.ValidatePhone(req.Phone); err != nil {
		return nil, err
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(forUpdate).Where("phone = ?", req.Phone).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{Phone: req.Phone}
		case err != nil:
			return apperr.Internal(err)
		case user.Status != constants.UserStatusRejected:
			return apperr.NewAppError(apperr.ErrCodeUserExists, "the phone number has already been taken", nil)
		}

		user.FirstName = strings.TrimSpace(req.FirstName)
		user.LastName = strings.TrimSpace(req.LastName)
		user.Email = strings.TrimSpace(req.Email)
		user.DateOfBirth = req.DateOfBirth
		user.Password = hashed
		user.Role = req.Role
		user.Status = constants.UserStatusPending
		user.RejectionReason = ""
		if err := tx.Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.NewAppError(apperr.ErrCodeUserExists, "the phone number has already been taken", nil)
			}
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return &user, nil
}

// Login checks credentials and issues a token. Only approved accounts may log in.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (string, time.Time, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("phone = ?", req.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !CheckPasswordHash(req.Password, user.Password)) {
		return "", time.Time{}, nil, apperr.NewAppError(apperr.ErrCodeInvalidPassword, "invalid phone number or password", nil)
	}
	if err != nil {
		return "", time.Time{}, nil, apperr.Internal(err)
	}

	switch user.Status {
	case constants.UserStatusPending:
		return "", time.Time{}, nil, apperr.NewAppError(apperr.ErrCodeAccountPending, "your account is awaiting admin approval", nil)
	case constants.UserStatusRejected:
		return "", time.Time{}, nil, apperr.NewAppError(apperr.ErrCodeAccountRejected, "your account has been rejected", nil).
			WithDetails(map[string]any{"reason": user.RejectionReason})
	}

	token, expiresAt, err := s.tokens.Generate(&user)
	if err != nil {
		return "", time.Time{}, nil, apperr.Internal(err)
	}
	s.logger.Info().Uint("user_id", user.ID).Msg("user logged in")
	return token, expiresAt, &user, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, p types.Principal) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, p.UserID).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return &user, nil
}
