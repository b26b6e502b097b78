// Package auth issues and verifies the signed, time-bounded tokens used for
// account activation, sessions and password resets.
//
// All tokens are HS256 JWTs signed with one key. Each carries a purpose
// claim, and Verify rejects a token presented for a different purpose, so an
// activation link can not be replayed as a session credential.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose distinguishes what a token may be used for.
type Purpose string

const (
	PurposeActivation Purpose = "activation"
	PurposeSession    Purpose = "session"
	PurposeReset      Purpose = "reset"
)

// Claims is the registered claim set plus the subject's user id and purpose.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string  `json:"uid"`
	Purpose Purpose `json:"purpose"`
}

// TokenService has no state besides the signing key.
type TokenService struct {
	secretKey []byte
	now       func() time.Time
}

func NewTokenService(secretKey []byte) *TokenService {
	return &TokenService{secretKey: secretKey, now: time.Now}
}

// Issue signs a token for userID that expires validity from now.
func (s *TokenService) Issue(userID string, purpose Purpose, validity time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:  userID,
		Purpose: purpose,
	})

	return token.SignedString(s.secretKey)
}

// Verify checks signature, expiry and purpose and returns the subject's
// user id. Every failure is reported as common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string, purpose Purpose) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.Join(common.ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Purpose != purpose || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
