package constants

// User roles
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

// User status
const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
	UserStatusRejected = "rejected"
)

// Apartment status
const (
	ApartmentStatusPending  = "pending"
	ApartmentStatusApproved = "approved"
	ApartmentStatusRejected = "rejected"
)

// Booking status
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Rental application status
const (
	ApplicationStatusPending          = "pending"
	ApplicationStatusApproved         = "approved"
	ApplicationStatusRejected         = "rejected"
	ApplicationStatusModifiedPending  = "modified_pending"
	ApplicationStatusModifiedApproved = "modified_approved"
)

// Modification status
const (
	ModificationStatusPending  = "pending"
	ModificationStatusApproved = "approved"
	ModificationStatusRejected = "rejected"
)

// Wallet request
const (
	WalletRequestDeposit    = "deposit"
	WalletRequestWithdrawal = "withdrawal"

	WalletRequestStatusPending  = "pending"
	WalletRequestStatusApproved = "approved"
	WalletRequestStatusRejected = "rejected"
)

// Wallet transaction types
const (
	TxDeposit        = "deposit"
	TxWithdrawal     = "withdrawal"
	TxBookingPayment = "booking_payment"
	TxBookingIncome  = "booking_income"
	TxRefundCredit   = "refund_credit"
	TxRefundDebit    = "refund_debit"
	TxAdjustment     = "adjustment"
)

// SPYPerUSD is the fixed exchange rate used for every wallet amount.
const SPYPerUSD = 110

// Upper bounds on USD inputs. They keep SPY amounts and balances far from
// int64 overflow.
const (
	MaxWalletRequestUSD = 1_000_000
	MaxPricePerNightUSD = 100_000
)

// MaxApplicationAttempts caps rental applications per (user, apartment).
const MaxApplicationAttempts = 3

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"
