package services

import (
	"context"

	"rentspace/constants"
	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// WalletRequestService handles deposit and withdrawal requests, which only
// touch balances once an admin approves them.
type WalletRequestService struct {
	db     *gorm.DB
	wallet *WalletService
	logger zerolog.Logger
	clock  clockwork.Clock
}

type WalletRequestServiceOptions struct {
	DB     *gorm.DB
	Wallet *WalletService
	Logger zerolog.Logger
	Clock  clockwork.Clock
}

func NewWalletRequestService(opts WalletRequestServiceOptions) *WalletRequestService {
	s := &WalletRequestService{
		db:     opts.DB,
		wallet: opts.Wallet,
		logger: opts.Logger.With().Str("component", "wallet_request").Logger(),
		clock:  opts.Clock,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

// CreateDeposit asks an admin to credit amountUSD to p's wallet.
func (s *WalletRequestService) CreateDeposit(ctx context.Context, p types.Principal, amountUSD float64) (*models.WalletRequest, error) {
	return s.create(ctx, p, constants.WalletRequestDeposit, amountUSD)
}

// CreateWithdrawal asks an admin to pay out amountUSD. The balance must
// cover it now; it is checked again at approval.
func (s *WalletRequestService) CreateWithdrawal(ctx context.Context, p types.Principal, amountUSD float64) (*models.WalletRequest, error) {
	return s.create(ctx, p, constants.WalletRequestWithdrawal, amountUSD)
}

func (s *WalletRequestService) create(ctx context.Context, p types.Principal, kind string, amountUSD float64) (*models.WalletRequest, error) {
	if p.IsAdmin() {
		return nil, apperr.Forbidden("admins have no wallet")
	}
	if amountUSD > constants.MaxWalletRequestUSD {
		return nil, apperr.NewAppError(apperr.ErrCodeInvalidAmount, "amount exceeds the per-request limit", nil).
			WithDetails(map[string]any{"max_usd": constants.MaxWalletRequestUSD})
	}
	amount := USDToSPY(amountUSD)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	if kind == constants.WalletRequestWithdrawal {
		w, err := s.wallet.Get(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		if w.Balance < amount {
			return nil, apperr.InsufficientFunds(amount, w.Balance)
		}
	}

	req := &models.WalletRequest{
		UserID: p.UserID,
		Type:   kind,
		Amount: amount,
		Status: constants.WalletRequestStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info().Uint("request_id", req.ID).Str("type", kind).Int64("amount", amount).Msg("wallet request created")
	return req, nil
}

// ListMine lists p's own requests.
func (s *WalletRequestService) ListMine(ctx context.Context, p types.Principal, page types.Page) ([]models.WalletRequest, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.WalletRequest{}).Where("user_id = ?", p.UserID)
	return s.list(q, page)
}

// List pages through all requests for admins.
func (s *WalletRequestService) List(ctx context.Context, p types.Principal, status, kind string, page types.Page) ([]models.WalletRequest, int64, error) {
	if err := requireAdmin(p); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.WalletRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if kind != "" {
		q = q.Where("type = ?", kind)
	}
	return s.list(q.Preload("User"), page)
}

func (s *WalletRequestService) list(q *gorm.DB, page types.Page) ([]models.WalletRequest, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var rows []models.WalletRequest
	if err := q.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rows, total, nil
}

func (s *WalletRequestService) pendingRequestTx(tx *gorm.DB, requestID uint) (*models.WalletRequest, error) {
	var req models.WalletRequest
	if err := tx.Clauses(forUpdate).First(&req, requestID).Error; err != nil {
		return nil, apperr.FromDB(err, "wallet request")
	}
	if req.Status != constants.WalletRequestStatusPending {
		return nil, apperr.InvalidTransition("the request has already been " + req.Status)
	}
	return &req, nil
}

// Approve applies the request to the wallet and marks it approved in the
// same transaction.
func (s *WalletRequestService) Approve(ctx context.Context, p types.Principal, requestID uint) (*models.WalletRequest, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	var req *models.WalletRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if req, err = s.pendingRequestTx(tx, requestID); err != nil {
			return err
		}

		entry := Entry{UserID: req.UserID, Amount: req.Amount}
		if req.Type == constants.WalletRequestDeposit {
			entry.Type, entry.Description = constants.TxDeposit, "approved deposit request"
			_, err = s.wallet.CreditTx(tx, entry)
		} else {
			entry.Type, entry.Description = constants.TxWithdrawal, "approved withdrawal request"
			_, err = s.wallet.DebitTx(tx, entry)
		}
		if err != nil {
			return err
		}
		return s.closeTx(tx, req, p, constants.WalletRequestStatusApproved, "")
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("request_id", req.ID).Str("type", req.Type).Uint("admin_id", p.UserID).Msg("wallet request approved")
	return req, nil
}

// Reject closes the request without touching the wallet.
func (s *WalletRequestService) Reject(ctx context.Context, p types.Principal, requestID uint, reason string) (*models.WalletRequest, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}
	var req *models.WalletRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if req, err = s.pendingRequestTx(tx, requestID); err != nil {
			return err
		}
		return s.closeTx(tx, req, p, constants.WalletRequestStatusRejected, reason)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("request_id", req.ID).Uint("admin_id", p.UserID).Msg("wallet request rejected")
	return req, nil
}

func (s *WalletRequestService) closeTx(tx *gorm.DB, req *models.WalletRequest, p types.Principal, status, reason string) error {
	now := s.clock.Now()
	adminID := p.UserID
	req.Status = status
	req.Reason = reason
	req.ProcessedBy = &adminID
	req.ProcessedAt = &now
	if err := tx.Model(&models.WalletRequest{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
		"status":       req.Status,
		"reason":       req.Reason,
		"processed_by": req.ProcessedBy,
		"processed_at": req.ProcessedAt,
	}).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}
