package models

import (
	"time"

	"rentspace/constants"
)

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	FirstName       string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName        string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone           string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Email           string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Password        string    `gorm:"not null" json:"-"`
	DateOfBirth     string    `gorm:"type:varchar(10)" json:"date_of_birth,omitempty"`
	Role            string    `gorm:"type:varchar(20);not null;index" json:"role"`
	Status          string    `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	RejectionReason string    `gorm:"type:varchar(255)" json:"rejection_reason,omitempty"`

	Wallet *Wallet `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsApproved() bool {
	return u.Status == constants.UserStatusApproved
}
