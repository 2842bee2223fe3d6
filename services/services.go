package services

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Services is the wired application layer shared by the HTTP routes and
// the batch jobs.
type Services struct {
	Tokens         *TokenService
	Auth           *AuthService
	Users          *UserService
	Wallet         *WalletService
	WalletRequests *WalletRequestService
	Apartments     *ApartmentService
	Bookings       *BookingService
	Applications   *RentalApplicationService
	Reviews        *ReviewService
}

type Options struct {
	DB        *gorm.DB
	Cache     Cache
	Logger    zerolog.Logger
	JWTSecret string
	TokenTTL  time.Duration
	Clock     clockwork.Clock
}

func New(opts Options) *Services {
	tokens := NewTokenService(opts.JWTSecret, opts.TokenTTL, opts.Clock)
	wallet := NewWalletService(WalletServiceOptions{DB: opts.DB, Logger: opts.Logger})
	bookings := NewBookingService(BookingServiceOptions{
		DB:     opts.DB,
		Wallet: wallet,
		Cache:  opts.Cache,
		Logger: opts.Logger,
		Clock:  opts.Clock,
	})
	return &Services{
		Tokens: tokens,
		Auth:   NewAuthService(AuthServiceOptions{DB: opts.DB, Tokens: tokens, Logger: opts.Logger}),
		Users:  NewUserService(UserServiceOptions{DB: opts.DB, Wallet: wallet, Logger: opts.Logger}),
		Wallet: wallet,
		WalletRequests: NewWalletRequestService(WalletRequestServiceOptions{
			DB:     opts.DB,
			Wallet: wallet,
			Logger: opts.Logger,
			Clock:  opts.Clock,
		}),
		Apartments: NewApartmentService(ApartmentServiceOptions{DB: opts.DB, Cache: opts.Cache, Logger: opts.Logger}),
		Bookings:   bookings,
		Applications: NewRentalApplicationService(RentalApplicationServiceOptions{
			DB:       opts.DB,
			Bookings: bookings,
			Logger:   opts.Logger,
			Clock:    opts.Clock,
		}),
		Reviews: NewReviewService(ReviewServiceOptions{DB: opts.DB, Cache: opts.Cache, Logger: opts.Logger}),
	}
}
