package auth

import (
	"fmt"
	"strconv"
	"time"

	"playshare/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenExpiry is how long an issued token stays valid.
const defaultTokenExpiry = 24 * time.Hour

// Claims are the JWT claims carried by a playshare auth token. The subject
// is the decimal user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed auth tokens. The signing secret
// is injected from configuration at construction.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a TokenService with the default 24h expiry.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expiry: defaultTokenExpiry,
	}
}

// GenerateToken produces a signed token for the given user.
func (s *TokenService) GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the subject user ID. It does not
// check that the user still exists; that is the caller's concern.
func (s *TokenService) ParseToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, apperr.ErrInvalidToken.WithError(err)
	}
	if !token.Valid {
		return 0, apperr.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return 0, apperr.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.ErrInvalidToken.WithError(err)
	}
	return userID, nil
}
