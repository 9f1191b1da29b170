package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/bananamath/internal/model"
)

// Claims are the JWT claims carried by a session token
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

var errInvalidToken = errors.New("invalid token")

// expiryFor returns when a session issued at now lasts until, truncated to
// the precision of the exp claim
func expiryFor(now time.Time, d time.Duration) time.Time {
	return now.Add(d).Truncate(jwt.TimePrecision)
}

// signToken issues an HS256 token for profile valid from now until expires
func signToken(secret []byte, profile *model.UserProfile, now, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(profile.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: profile.Username,
	})
	return token.SignedString(secret)
}

// parseToken verifies the signature and expiry of tokenString as seen at
// the time returned by now
func parseToken(secret []byte, tokenString string, now func() time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}
