package services

import (
	"context"

	"rentspace/constants"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UserService covers the admin side of account approval.
type UserService struct {
	db     *gorm.DB
	wallet *WalletService
	logger zerolog.Logger
}

type UserServiceOptions struct {
	DB     *gorm.DB
	Wallet *WalletService
	Logger zerolog.Logger
}

func NewUserService(opts UserServiceOptions) *UserService {
	return &UserService{
		db:     opts.DB,
		wallet: opts.Wallet,
		logger: opts.Logger.With().Str("component", "user").Logger(),
	}
}

func requireAdmin(p types.Principal) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

// List pages through accounts, optionally filtered by status and role.
func (s *UserService) List(ctx context.Context, p types.Principal, status, role string, page types.Page) ([]models.User, int64, error) {
	if err := requireAdmin(p); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var users []models.User
	if err := q.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

func (s *UserService) pendingUserTx(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(forUpdate).First(&user, userID).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	if user.Status != constants.UserStatusPending {
		return nil, apperr.InvalidTransition("only pending accounts can be reviewed, this one is " + user.Status)
	}
	return &user, nil
}

// Approve activates a pending account and opens its wallet.
func (s *UserService) Approve(ctx context.Context, p types.Principal, userID uint) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = s.pendingUserTx(tx, userID); err != nil {
			return err
		}
		user.Status = constants.UserStatusApproved
		user.RejectionReason = ""
		if err := tx.Model(user).Updates(map[string]interface{}{
			"status":           user.Status,
			"rejection_reason": "",
		}).Error; err != nil {
			return apperr.Internal(err)
		}
		if err := s.wallet.EnsureWalletTx(tx, user.ID); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", user.ID).Uint("admin_id", p.UserID).Msg("user approved")
	return user, nil
}

// Reject refuses a pending account. The account stays on file so the same
// phone number can register again.
func (s *UserService) Reject(ctx context.Context, p types.Principal, userID uint, reason string) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = s.pendingUserTx(tx, userID); err != nil {
			return err
		}
		user.Status = constants.UserStatusRejected
		user.RejectionReason = reason
		if err := tx.Model(user).Updates(map[string]interface{}{
			"status":           user.Status,
			"rejection_reason": reason,
		}).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", user.ID).Uint("admin_id", p.UserID).Msg("user rejected")
	return user, nil
}
