package dto

import "rentspace/models"

type WalletAmountRequest struct {
	AmountUSD float64 `json:"amount_usd" binding:"required,gt=0,max=1000000"`
}

type WalletResponse struct {
	UserID     uint    `json:"user_id"`
	BalanceSPY int64   `json:"balance_spy"`
	BalanceUSD float64 `json:"balance_usd"`
}

type WalletTransactionResponse struct {
	ID           uint   `json:"id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balance_after"`
	BookingID    *uint  `json:"booking_id,omitempty"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
}

func NewWalletTransactionResponses(rows []models.WalletTransaction) []WalletTransactionResponse {
	out := make([]WalletTransactionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, WalletTransactionResponse{
			ID:           r.ID,
			Type:         r.Type,
			Amount:       r.Amount,
			BalanceAfter: r.BalanceAfter,
			BookingID:    r.BookingID,
			Description:  r.Description,
			CreatedAt:    r.CreatedAt.Format(timestampLayout),
		})
	}
	return out
}

type WalletRequestResponse struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	Type        string  `json:"type"`
	AmountSPY   int64   `json:"amount_spy"`
	AmountUSD   float64 `json:"amount_usd"`
	Status      string  `json:"status"`
	Reason      string  `json:"reason,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt string  `json:"processed_at,omitempty"`
}

// NewWalletRequestResponse renders r. toUSD converts the stored SPY amount.
func NewWalletRequestResponse(r *models.WalletRequest, toUSD func(int64) float64) WalletRequestResponse {
	resp := WalletRequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      r.Type,
		AmountSPY: r.Amount,
		AmountUSD: toUSD(r.Amount),
		Status:    r.Status,
		Reason:    r.Reason,
		CreatedAt: r.CreatedAt.Format(timestampLayout),
	}
	if r.User.ID != 0 {
		resp.UserName = r.User.FullName()
	}
	if r.ProcessedAt != nil {
		resp.ProcessedAt = r.ProcessedAt.Format(timestampLayout)
	}
	return resp
}

func NewWalletRequestResponses(rows []models.WalletRequest, toUSD func(int64) float64) []WalletRequestResponse {
	out := make([]WalletRequestResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewWalletRequestResponse(&rows[i], toUSD))
	}
	return out
}
