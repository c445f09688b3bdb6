package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Only the API can verify tokens; this is used to drop sessions whose token
// has already lapsed before spending a round trip on it. ok is false when the
// token is not a JWT or carries no exp claim.
func TokenExpiry(tokenString string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}

	switch v := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	default:
		return time.Time{}, false
	}
}

// TokenExpired reports whether the token's exp claim lies before now. Tokens
// without a readable exp are never considered expired here.
func TokenExpired(tokenString string, now time.Time) bool {
	exp, ok := TokenExpiry(tokenString)
	return ok && !now.Before(exp)
}
