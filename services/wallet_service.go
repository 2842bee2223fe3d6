package services

import (
	"context"
	"sort"

	"rentspace/constants"
	apperr "rentspace/errors"
	"rentspace/metrics"
	"rentspace/models"
	"rentspace/types"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

// WalletService owns every balance change. All mutations go through a
// locked wallet row and write a ledger entry in the same transaction.
type WalletService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

type WalletServiceOptions struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

func NewWalletService(opts WalletServiceOptions) *WalletService {
	return &WalletService{
		db:     opts.DB,
		logger: opts.Logger.With().Str("component", "wallet").Logger(),
	}
}

// Entry describes one side of a balance change.
type Entry struct {
	UserID      uint
	Amount      int64
	Type        string
	Description string
	BookingID   *uint
}

// Transfer moves Amount from one wallet to another.
type Transfer struct {
	FromUserID  uint
	ToUserID    uint
	Amount      int64
	BookingID   *uint
	DebitType   string
	CreditType  string
	Description string
}

// EnsureWalletTx creates the user's wallet if it does not exist yet.
func (s *WalletService) EnsureWalletTx(tx *gorm.DB, userID uint) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Wallet{UserID: userID}).Error
}

// lockOrder returns userIDs ascending without duplicates.
func lockOrder(userIDs ...uint) []uint {
	ids := append([]uint(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

// lockWalletsTx locks the wallets of userIDs in ascending user id order so
// concurrent transfers between the same pair cannot deadlock.
func (s *WalletService) lockWalletsTx(tx *gorm.DB, userIDs ...uint) (map[uint]*models.Wallet, error) {
	ids := lockOrder(userIDs...)
	locked := make(map[uint]*models.Wallet, len(ids))
	for _, id := range ids {
		if err := s.EnsureWalletTx(tx, id); err != nil {
			return nil, apperr.Internal(err)
		}
		var w models.Wallet
		if err := tx.Clauses(forUpdate).Where("user_id = ?", id).First(&w).Error; err != nil {
			return nil, apperr.FromDB(err, "wallet")
		}
		locked[id] = &w
	}
	return locked, nil
}

// applyTx adds delta to a locked wallet and writes the ledger row.
func (s *WalletService) applyTx(tx *gorm.DB, w *models.Wallet, delta int64, e Entry) (*models.WalletTransaction, error) {
	if w.Balance+delta < 0 {
		return nil, apperr.InsufficientFunds(-delta, w.Balance)
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance + ? >= 0", w.ID, delta).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return nil, apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.InsufficientFunds(-delta, w.Balance)
	}
	w.Balance += delta

	entry := &models.WalletTransaction{
		WalletID:     w.ID,
		UserID:       w.UserID,
		Type:         e.Type,
		Amount:       delta,
		BalanceAfter: w.Balance,
		BookingID:    e.BookingID,
		Description:  e.Description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	metrics.WalletEntries.WithLabelValues(e.Type).Inc()
	return entry, nil
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return apperr.NewAppError(apperr.ErrCodeInvalidAmount, "amount must be greater than zero", nil)
	}
	return nil
}

// CreditTx adds funds inside an existing transaction.
func (s *WalletService) CreditTx(tx *gorm.DB, e Entry) (*models.WalletTransaction, error) {
	if err := validateAmount(e.Amount); err != nil {
		return nil, err
	}
	wallets, err := s.lockWalletsTx(tx, e.UserID)
	if err != nil {
		return nil, err
	}
	return s.applyTx(tx, wallets[e.UserID], e.Amount, e)
}

// DebitTx removes funds inside an existing transaction. It fails with
// INSUFFICIENT_FUNDS rather than letting the balance go negative.
func (s *WalletService) DebitTx(tx *gorm.DB, e Entry) (*models.WalletTransaction, error) {
	if err := validateAmount(e.Amount); err != nil {
		return nil, err
	}
	wallets, err := s.lockWalletsTx(tx, e.UserID)
	if err != nil {
		return nil, err
	}
	return s.applyTx(tx, wallets[e.UserID], -e.Amount, e)
}

// TransferTx debits the payer and credits the payee, writing one ledger row
// for each side.
func (s *WalletService) TransferTx(tx *gorm.DB, t Transfer) error {
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if t.FromUserID == t.ToUserID {
		return apperr.Validation("cannot transfer to the same wallet")
	}
	wallets, err := s.lockWalletsTx(tx, t.FromUserID, t.ToUserID)
	if err != nil {
		return err
	}

	from := wallets[t.FromUserID]
	if from.Balance < t.Amount {
		return apperr.InsufficientFunds(t.Amount, from.Balance)
	}
	if _, err := s.applyTx(tx, from, -t.Amount, Entry{
		Type: t.DebitType, Description: t.Description, BookingID: t.BookingID,
	}); err != nil {
		return err
	}
	if _, err := s.applyTx(tx, wallets[t.ToUserID], t.Amount, Entry{
		Type: t.CreditType, Description: t.Description, BookingID: t.BookingID,
	}); err != nil {
		return err
	}
	metrics.WalletTransferredSPY.Add(float64(t.Amount))
	return nil
}

// AddFunds credits a wallet in its own transaction.
func (s *WalletService) AddFunds(ctx context.Context, e Entry) (*models.WalletTransaction, error) {
	var entry *models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.CreditTx(tx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", e.UserID).Int64("amount", e.Amount).Str("type", e.Type).Msg("wallet credited")
	return entry, nil
}

// DeductFunds debits a wallet in its own transaction.
func (s *WalletService) DeductFunds(ctx context.Context, e Entry) (*models.WalletTransaction, error) {
	var entry *models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.DebitTx(tx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", e.UserID).Int64("amount", e.Amount).Str("type", e.Type).Msg("wallet debited")
	return entry, nil
}

// DeductAndTransfer pays a booking from one wallet to another in its own
// transaction.
func (s *WalletService) DeductAndTransfer(ctx context.Context, fromUserID, toUserID uint, amount int64, bookingID *uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.TransferTx(tx, Transfer{
			FromUserID:  fromUserID,
			ToUserID:    toUserID,
			Amount:      amount,
			BookingID:   bookingID,
			DebitType:   constants.TxBookingPayment,
			CreditType:  constants.TxBookingIncome,
			Description: "booking payment",
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info().Uint("from", fromUserID).Uint("to", toUserID).Int64("amount", amount).Msg("wallet transfer")
	return nil
}

// Get returns the user's wallet, creating an empty one on first access.
func (s *WalletService) Get(ctx context.Context, userID uint) (*models.Wallet, error) {
	db := s.db.WithContext(ctx)
	if err := s.EnsureWalletTx(db, userID); err != nil {
		return nil, apperr.Internal(err)
	}
	var w models.Wallet
	if err := db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, apperr.FromDB(err, "wallet")
	}
	return &w, nil
}

// Transactions lists the user's ledger, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID uint, txType string, page types.Page) ([]models.WalletTransaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var rows []models.WalletTransaction
	if err := q.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rows, total, nil
}
