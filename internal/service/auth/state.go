package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ga-bridge/pkg/errors"
)

// stateLifetime bounds how long an authorize redirect stays valid.
const stateLifetime = 10 * time.Minute

// StateIssuer signs and validates the OAuth anti-forgery state value.
// The state is a short-lived HMAC JWT carrying the connection scope, so
// the callback can recover the scope without server-side session state.
type StateIssuer struct {
	secret   []byte
	lifetime time.Duration
}

// NewStateIssuer creates a state issuer signing with the given secret.
func NewStateIssuer(secret string) *StateIssuer {
	return &StateIssuer{
		secret:   []byte(secret),
		lifetime: stateLifetime,
	}
}

// Issue signs a state token for the given connection scope.
func (s *StateIssuer) Issue(scope string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.NewConfigError("state signing secret is not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"scope": scope,
		"iat":   now.Unix(),
		"exp":   now.Add(s.lifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.NewInternalError("failed to sign state token", err)
	}
	return signed, nil
}

// Validate checks the state token's signature and expiry and returns
// the scope it was issued for.
func (s *StateIssuer) Validate(state string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.NewConfigError("state signing secret is not configured")
	}

	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.NewAuthError("invalid or expired state parameter", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.NewAuthError("invalid state claims", nil)
	}

	scope, _ := claims["scope"].(string)
	if scope == "" {
		scope = DefaultStateScope
	}
	return scope, nil
}

// DefaultStateScope is used when an issued state carried no scope.
const DefaultStateScope = "global"
