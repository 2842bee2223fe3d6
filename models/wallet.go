package models

import "time"

// Wallet holds a user's balance in SPY. Balance never goes negative.
type Wallet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
}

// WalletTransaction is an immutable ledger row. Amount is signed.
type WalletTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	WalletID     uint      `gorm:"not null;index" json:"wallet_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Type         string    `gorm:"type:varchar(30);not null" json:"type"`
	Amount       int64     `gorm:"not null" json:"amount"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	BookingID    *uint     `gorm:"index" json:"booking_id,omitempty"`
	Description  string    `gorm:"type:varchar(255)" json:"description"`
}

// WalletRequest is a deposit or withdrawal awaiting admin approval.
type WalletRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Type        string     `gorm:"type:varchar(20);not null" json:"type"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Status      string     `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Reason      string     `gorm:"type:varchar(255)" json:"reason,omitempty"`
	ProcessedBy *uint      `json:"processed_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
