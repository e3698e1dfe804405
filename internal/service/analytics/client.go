package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/errors"
)

const requestTimeout = 15 * time.Second

// apiClient is the shared HTTP layer for both Google Analytics API
// generations: bearer auth, JSON decoding and error classification.
type apiClient struct {
	httpClient *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{httpClient: &http.Client{Timeout: requestTimeout}}
}

// doGet performs an authenticated GET and decodes the body into out.
func (c *apiClient) doGet(ctx context.Context, rawURL string, ts domain.TokenSet, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.NewInternalError("failed to build request", err)
	}
	return c.do(req, ts, out)
}

// doPost performs an authenticated JSON POST and decodes the body into out.
func (c *apiClient) doPost(ctx context.Context, rawURL string, ts domain.TokenSet, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.NewInternalError("failed to marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return errors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, ts, out)
}

func (c *apiClient) do(req *http.Request, ts domain.TokenSet, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+ts.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError("analytics request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError("failed to read analytics response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.NewAPIError("failed to decode analytics response", err)
		}
	}
	return nil
}

// classifyAPIError separates auth failures, which are retryable after a
// token refresh, from everything else.
func classifyAPIError(status int, body []byte) error {
	var envelope apiErrorResponse
	_ = json.Unmarshal(body, &envelope)

	msg := envelope.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if len(msg) > 300 {
		msg = msg[:300]
	}

	if status == http.StatusUnauthorized || envelope.Error.Status == "UNAUTHENTICATED" {
		return errors.NewAuthError(fmt.Sprintf("analytics API rejected credentials: %s", msg), nil)
	}
	return errors.NewAPIError(fmt.Sprintf("analytics API returned status %d: %s", status, msg), nil)
}
