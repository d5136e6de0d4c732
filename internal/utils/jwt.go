package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned by [TokenExpiry] when the token carries no exp
// claim.
var ErrNoExpiry = errors.New("token has no expiration claim")

// TokenExpiry extracts the exp claim of a JWT without verifying its
// signature. The agent never holds the signing key; the server remains the
// authority on validity, this only lets the client stop using a token that
// is already known to be dead.
//
// Example usage:
//
//	exp, err := utils.TokenExpiry(rawToken)
//	if err == nil && time.Now().After(exp) {
//	    // token is stale
//	}
func TokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("error occurred parsing token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("error occurred reading expiration: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}

	return exp.Time, nil
}

// TokenExpired reports whether tokenString is a JWT whose exp claim lies
// before now. Opaque tokens and JWTs without exp are never considered
// expired.
func TokenExpired(tokenString string, now time.Time) bool {
	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
