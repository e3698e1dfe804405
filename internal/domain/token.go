package domain

import "time"

// Credentials holds the OAuth client configuration. Loaded once from
// config and immutable for the lifetime of the process.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// TokenSet is the OAuth token state for a connection. It is mutated
// only by a refresh; persistence is the caller's job (settings store).
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	Scope        string    `json:"scope,omitempty"`
}

// Valid reports whether the access token can still be used without a
// refresh attempt. skew is subtracted from the expiry so tokens are
// refreshed shortly before Google considers them expired.
func (t TokenSet) Valid(now time.Time, skew time.Duration) bool {
	if t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Before(t.Expiry.Add(-skew))
}
