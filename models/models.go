package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Wallet{},
		&Apartment{},
		&RentalApplication{},
		&RentalApplicationModification{},
		&Booking{},
		&WalletTransaction{},
		&WalletRequest{},
		&Review{},
	}
}
