package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is the subset of access token claims the client relies on.
type AccessToken struct {
	// Subject is the "sub" claim: the remote user identifier.
	Subject string

	// ExpiresAt is the "exp" claim; zero when the token carries none.
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed at now.
func (t AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// ParseAccessToken reads the claims of a JWT without verifying its
// signature. The remote store verifies the token; the client only needs the
// subject and expiry.
//
//	token, err := utils.ParseAccessToken(raw)
//	if err == nil && token.Expired(time.Now()) {
//	    // refresh before calling the remote store
//	}
func ParseAccessToken(tokenString string) (AccessToken, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return AccessToken{}, errors.New("empty access token")
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return AccessToken{}, fmt.Errorf("error occurred parsing access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AccessToken{}, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return AccessToken{}, fmt.Errorf("error occurred during getting subject from token: %w", err)
	}

	var result AccessToken
	result.Subject = sub

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return AccessToken{}, fmt.Errorf("error occurred during getting expiry from token: %w", err)
	}
	if exp != nil {
		result.ExpiresAt = exp.Time
	}

	return result, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
