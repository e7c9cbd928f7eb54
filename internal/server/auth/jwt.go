// Package auth issues and verifies bearer tokens, hashes passwords and
// carries the authenticated principal through request contexts.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/punit-mobi/RBAC-project/internal/common"
)

// DefaultTokenValidity is used when no lifetime is configured.
const DefaultTokenValidity = time.Hour

// ErrMissingSecret is returned when a token is requested without a signing key.
var ErrMissingSecret = errors.New("jwt secret is not defined")

// Claims carries the user id and admin flag next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

// GenerateToken signs an HS256 token for userID. A zero validity falls back
// to DefaultTokenValidity.
func GenerateToken(userID string, isAdmin bool, secretKey []byte, validity time.Duration) (string, error) {
	if len(secretKey) == 0 {
		return "", ErrMissingSecret
	}
	if validity == 0 {
		validity = DefaultTokenValidity
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:  userID,
		IsAdmin: isAdmin,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString and returns
// its claims. Expired tokens yield common.ErrTokenExpired, everything else
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	if len(secretKey) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
