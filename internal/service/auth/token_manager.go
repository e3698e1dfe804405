package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/errors"
	"ga-bridge/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// AnalyticsReadOnlyScope is the only scope the bridge requests.
	AnalyticsReadOnlyScope = "https://www.googleapis.com/auth/analytics.readonly"

	// TokenRefreshSkew - refresh tokens 5 minutes before expiry.
	TokenRefreshSkew = 5 * time.Minute

	// requestTimeout bounds every call to the OAuth endpoints.
	requestTimeout = 15 * time.Second

	defaultRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// TokenManager owns the OAuth token lifecycle: authorize URL
// construction, the code-for-token exchange, refresh and revocation.
// It never persists anything; callers hand the returned TokenSet to
// the settings store.
type TokenManager struct {
	creds      domain.Credentials
	oauthCfg   *oauth2.Config
	revokeURL  string
	httpClient *http.Client
	skew       time.Duration
	log        *logger.Logger
}

// NewTokenManager creates a token manager for the configured OAuth client.
func NewTokenManager(creds domain.Credentials, log *logger.Logger) *TokenManager {
	scopes := creds.Scopes
	if len(scopes) == 0 {
		scopes = []string{AnalyticsReadOnlyScope}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}

	return &TokenManager{
		creds:      creds,
		oauthCfg:   oauthCfg,
		revokeURL:  defaultRevokeURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		skew:       TokenRefreshSkew,
		log:        log,
	}
}

// SetEndpoints overrides the OAuth endpoint URLs. Tests point these at
// local stub servers.
func (m *TokenManager) SetEndpoints(authURL, tokenURL, revokeURL string) {
	if authURL != "" {
		m.oauthCfg.Endpoint.AuthURL = authURL
	}
	if tokenURL != "" {
		m.oauthCfg.Endpoint.TokenURL = tokenURL
	}
	if revokeURL != "" {
		m.revokeURL = revokeURL
	}
}

// BuildAuthorizeURL constructs the Google consent URL. Deterministic
// for a given state; no side effects.
func (m *TokenManager) BuildAuthorizeURL(state string) (string, error) {
	if err := m.checkCredentials(); err != nil {
		return "", err
	}

	// access_type=offline plus prompt=consent guarantees Google
	// returns a refresh token on first authorization.
	return m.oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// ExchangeCode performs the authorization-code-for-token exchange.
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) (domain.TokenSet, error) {
	if err := m.checkCredentials(); err != nil {
		return domain.TokenSet{}, err
	}
	if code == "" {
		return domain.TokenSet{}, errors.NewAuthError("no authorization code received", nil)
	}

	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", m.creds.ClientID)
	form.Set("client_secret", m.creds.ClientSecret)
	form.Set("redirect_uri", m.creds.RedirectURI)
	form.Set("grant_type", "authorization_code")

	resp, err := m.doTokenRequest(ctx, form)
	if err != nil {
		return domain.TokenSet{}, err
	}
	if resp.AccessToken == "" {
		return domain.TokenSet{}, errors.NewAuthError("token response missing access_token", nil)
	}

	return m.tokenSetFrom(resp, ""), nil
}

// GetValidToken returns ts unchanged while the access token is still
// usable, and refreshes it otherwise. Refresh is attempted at most
// once per call; retry policy lives with the report fetcher.
func (m *TokenManager) GetValidToken(ctx context.Context, ts domain.TokenSet) (domain.TokenSet, error) {
	if ts.Valid(time.Now(), m.skew) {
		return ts, nil
	}
	return m.Refresh(ctx, ts)
}

// Refresh exchanges the refresh token for a new access token. When the
// response omits a refresh token (Google usually does), the previous
// one is carried forward.
func (m *TokenManager) Refresh(ctx context.Context, ts domain.TokenSet) (domain.TokenSet, error) {
	if err := m.checkCredentials(); err != nil {
		return domain.TokenSet{}, err
	}
	if ts.RefreshToken == "" {
		return domain.TokenSet{}, errors.NewAuthError("access token expired and no refresh token is available", nil)
	}

	form := url.Values{}
	form.Set("refresh_token", ts.RefreshToken)
	form.Set("client_id", m.creds.ClientID)
	form.Set("client_secret", m.creds.ClientSecret)
	form.Set("grant_type", "refresh_token")

	resp, err := m.doTokenRequest(ctx, form)
	if err != nil {
		return domain.TokenSet{}, err
	}
	if resp.AccessToken == "" {
		return domain.TokenSet{}, errors.NewAuthError("refresh response missing access_token", nil)
	}

	m.log.WithField("expires_in", resp.ExpiresIn).Debug("Access token refreshed")

	return m.tokenSetFrom(resp, ts.RefreshToken), nil
}

// Revoke invalidates a token at Google's revocation endpoint.
func (m *TokenManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.NewInternalError("failed to build revoke request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errors.NewAuthError("token revocation request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.NewAuthError(fmt.Sprintf("token revocation returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return nil
}

// tokenEndpointResponse is the OAuth token endpoint payload, shared by
// the exchange and refresh grants.
type tokenEndpointResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// doTokenRequest posts a form to the token endpoint, per OAuth 2.0
// (RFC 6749). All failures surface as auth errors so callers can
// branch on a single kind.
func (m *TokenManager) doTokenRequest(ctx context.Context, form url.Values) (*tokenEndpointResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.oauthCfg.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.NewInternalError("failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAuthError("token endpoint request failed", err)
	}
	defer resp.Body.Close()

	var payload tokenEndpointResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewAuthError("failed to decode token response", err)
	}

	if payload.Error != "" {
		msg := payload.Error
		if payload.ErrorDescription != "" {
			msg = payload.ErrorDescription
		}
		return nil, errors.NewAuthError(msg, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAuthError(fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	return &payload, nil
}

func (m *TokenManager) tokenSetFrom(resp *tokenEndpointResponse, previousRefreshToken string) domain.TokenSet {
	refreshToken := resp.RefreshToken
	if refreshToken == "" {
		refreshToken = previousRefreshToken
	}
	tokenType := resp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return domain.TokenSet{
		AccessToken:  resp.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		Expiry:       time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:        resp.Scope,
	}
}

func (m *TokenManager) checkCredentials() error {
	if m.creds.ClientID == "" || m.creds.ClientSecret == "" {
		return errors.NewConfigError("Google OAuth client id and secret are not configured")
	}
	return nil
}
