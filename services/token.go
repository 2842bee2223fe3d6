package services

import (
	"fmt"
	"time"

	apperr "rentspace/errors"
	"rentspace/models"
	"rentspace/types"

	"github.com/dgrijalva/jwt-go"
	"github.com/jonboulle/clockwork"
)

type UserInfo struct {
	UserID uint   `json:"userid"`
	Role   string `json:"role"`
}

type Claims struct {
	UserInfo UserInfo `json:"userinfo"`
	jwt.StandardClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clockwork.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock clockwork.Clock) *TokenService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "rentspace",
		clock:  clock,
	}
}

// Generate signs a token for u and returns it with its expiry.
func (s *TokenService) Generate(u *models.User) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserInfo: UserInfo{UserID: u.ID, Role: u.Role},
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(u.ID),
			Issuer:    s.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature and expiry of tokenString and returns its principal.
func (s *TokenService) Parse(tokenString string) (types.Principal, error) {
	claims := &Claims{}
	// Expiry is checked against the service clock below.
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return types.Principal{}, apperr.NewAppError(apperr.ErrCodeInvalidToken, "invalid or expired token", err)
	}
	if !claims.VerifyExpiresAt(s.clock.Now().Unix(), true) {
		return types.Principal{}, apperr.NewAppError(apperr.ErrCodeInvalidToken, "invalid or expired token", nil)
	}
	if claims.UserInfo.UserID == 0 || claims.UserInfo.Role == "" {
		return types.Principal{}, apperr.NewAppError(apperr.ErrCodeInvalidToken, "token carries no user", nil)
	}
	return types.Principal{UserID: claims.UserInfo.UserID, Role: claims.UserInfo.Role}, nil
}
