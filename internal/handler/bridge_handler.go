package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"ga-bridge/internal/container"
	"ga-bridge/internal/domain"
	"ga-bridge/internal/service/analytics"
	"ga-bridge/internal/store"
	"ga-bridge/pkg/errors"
	"ga-bridge/pkg/logger"
)

// BridgeHandler exposes the analytics bridge API: OAuth connection
// lifecycle, property discovery and report data.
type BridgeHandler struct {
	container *container.Container
	log       *logger.Logger
}

// NewBridgeHandler creates the bridge handler.
func NewBridgeHandler(c *container.Container) *BridgeHandler {
	return &BridgeHandler{container: c, log: c.GetLogger()}
}

// scopeParam resolves the connection scope from the query string.
func scopeParam(r *http.Request) string {
	if scope := r.URL.Query().Get("scope"); scope != "" {
		return scope
	}
	return store.DefaultScope
}

// Connect handles GET /api/analytics/connect. It returns the Google
// consent URL the client should redirect the user to.
func (h *BridgeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	scope := scopeParam(r)

	state, err := h.container.StateIssuer.Issue(scope)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	authorizeURL, err := h.container.TokenManager.BuildAuthorizeURL(state)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{
		"authorize_url": authorizeURL,
	})
}

// Callback handles GET /oauth/callback, the OAuth redirect target. It
// validates the anti-forgery state, exchanges the code and persists the
// resulting token set.
func (h *BridgeHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if oauthErr := query.Get("error"); oauthErr != "" {
		writeError(w, h.log, errors.NewAuthError("authorization was denied: "+oauthErr, nil))
		return
	}

	scope, err := h.container.StateIssuer.Validate(query.Get("state"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	tokens, err := h.container.TokenManager.ExchangeCode(r.Context(), query.Get("code"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.container.Settings.SaveTokens(r.Context(), scope, tokens); err != nil {
		writeError(w, h.log, errors.NewInternalError("failed to persist tokens", err))
		return
	}

	h.log.WithField("scope", scope).Info("Google Analytics authorization completed")

	data := map[string]interface{}{
		"connected": true,
		"scope":     scope,
	}
	if conn := h.autoSelectProperty(r.Context(), scope, tokens); conn != nil {
		data["property"] = conn
	}

	writeSuccess(w, http.StatusOK, data)
}

// autoSelectProperty picks the first listed property for a scope that
// has no connection yet, so a fresh authorization is immediately
// usable. Listing or persistence failures leave the scope unselected
// without failing the callback.
func (h *BridgeHandler) autoSelectProperty(ctx context.Context, scope string, tokens domain.TokenSet) *domain.Connection {
	if _, found, err := h.container.Settings.LoadConnection(ctx, scope); err == nil && found {
		return nil
	}

	props, err := h.container.Lister.ListProperties(ctx, tokens)
	if err != nil {
		h.log.WithError(err).Warn("Could not list properties for auto-selection")
		return nil
	}
	if len(props) == 0 {
		return nil
	}

	conn := domain.Connection{
		PropertyID:    props[0].ID,
		PropertyName:  props[0].DisplayName,
		Generation:    props[0].Generation,
		MeasurementID: props[0].MeasurementID,
		Scope:         scope,
	}
	if err := h.container.Settings.SaveConnection(ctx, conn); err != nil {
		h.log.WithError(err).Warn("Could not persist auto-selected property")
		return nil
	}

	h.log.WithFields(map[string]interface{}{
		"scope":       scope,
		"property_id": conn.PropertyID,
	}).Info("Auto-selected first available property")
	return &conn
}

// Properties handles GET /api/analytics/properties. It lists every
// property the authorized user can report on, across both generations.
func (h *BridgeHandler) Properties(w http.ResponseWriter, r *http.Request) {
	scope := scopeParam(r)

	tokens, err := h.requireTokens(r.Context(), scope)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	tokens, err = h.container.TokenManager.GetValidToken(r.Context(), tokens)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.persistTokens(r.Context(), scope, tokens)

	properties, err := h.container.Lister.ListProperties(r.Context(), tokens)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
	})
}

// setPropertyRequest is the POST /api/analytics/property body.
type setPropertyRequest struct {
	PropertyID    string `json:"property_id"`
	PropertyName  string `json:"property_name"`
	MeasurementID string `json:"measurement_id"`
	Generation    string `json:"generation"`
	Scope         string `json:"scope"`
}

// SetProperty handles POST /api/analytics/property. Selecting a
// property also drops every cached report; stale data from the previous
// property must not survive the switch.
func (h *BridgeHandler) SetProperty(w http.ResponseWriter, r *http.Request) {
	var req setPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.NewValidationError("invalid request body", nil))
		return
	}
	if req.PropertyID == "" {
		writeError(w, h.log, errors.NewValidationError("property_id is required", map[string]interface{}{
			"property_id": "required",
		}))
		return
	}
	if req.Scope == "" {
		req.Scope = store.DefaultScope
	}

	generation := domain.Generation(req.Generation)
	if generation != domain.GenerationGA4 && generation != domain.GenerationUA {
		generation = domain.DetectGeneration(req.PropertyID)
	}

	conn := domain.Connection{
		PropertyID:    req.PropertyID,
		PropertyName:  req.PropertyName,
		Generation:    generation,
		MeasurementID: req.MeasurementID,
		Scope:         req.Scope,
	}
	if err := h.container.Settings.SaveConnection(r.Context(), conn); err != nil {
		writeError(w, h.log, errors.NewInternalError("failed to persist connection", err))
		return
	}

	if removed, err := h.container.ReportCache.ClearAll(r.Context()); err != nil {
		h.log.WithError(err).Warn("Failed to clear report cache after property change")
	} else if removed > 0 {
		h.log.WithField("removed", removed).Info("Report cache cleared after property change")
	}

	writeSuccess(w, http.StatusOK, conn)
}

// GetData handles GET /api/analytics/data, the main report endpoint.
func (h *BridgeHandler) GetData(w http.ResponseWriter, r *http.Request) {
	scope := scopeParam(r)
	query := r.URL.Query()

	conn, found, err := h.container.Settings.LoadConnection(r.Context(), scope)
	if err != nil {
		writeError(w, h.log, errors.NewInternalError("failed to load connection", err))
		return
	}
	if !found {
		writeError(w, h.log, errors.NewNotFoundError("no analytics property is connected"))
		return
	}

	tokens, err := h.requireTokens(r.Context(), scope)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	reportQuery := domain.ReportQuery{
		PropertyID: conn.PropertyID,
		Generation: conn.Generation,
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
		Metrics:    splitCSV(query.Get("metrics")),
		Dimensions: splitCSV(query.Get("dimensions")),
	}
	if n, err := strconv.Atoi(query.Get("max_results")); err == nil && n > 0 {
		reportQuery.MaxResults = n
	}
	if len(reportQuery.Metrics) == 0 {
		reportQuery.Metrics = []string{
			analytics.MetricUsers,
			analytics.MetricPageviews,
			analytics.MetricSessions,
		}
	}
	if len(reportQuery.Dimensions) == 0 {
		reportQuery.Dimensions = []string{analytics.DimensionDate}
	}

	result, updated, err := h.container.Fetcher.Fetch(r.Context(), reportQuery, tokens)
	// A refresh may have happened even when the fetch itself failed.
	if updated.AccessToken != tokens.AccessToken {
		h.persistTokens(r.Context(), scope, updated)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// TestConnection handles GET /api/analytics/test-connection. It proves
// the stored credentials still reach the Analytics APIs.
func (h *BridgeHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	scope := scopeParam(r)

	tokens, err := h.requireTokens(r.Context(), scope)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	tokens, err = h.container.TokenManager.GetValidToken(r.Context(), tokens)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.persistTokens(r.Context(), scope, tokens)

	accounts, err := h.container.Lister.ListAccounts(r.Context(), tokens)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"connected": true,
		"accounts":  len(accounts),
	})
}

// ClearCache handles DELETE /api/analytics/cache.
func (h *BridgeHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.container.ReportCache.ClearAll(r.Context())
	if err != nil {
		writeError(w, h.log, errors.NewInternalError("failed to clear report cache", err))
		return
	}

	h.log.WithField("removed", removed).Info("Report cache cleared")
	writeSuccess(w, http.StatusOK, map[string]int{"removed": removed})
}

// Disconnect handles POST /api/analytics/disconnect. Revocation is best
// effort; local state is removed either way so the user is never stuck
// half-connected.
func (h *BridgeHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	scope := scopeParam(r)
	ctx := r.Context()

	tokens, found, err := h.container.Settings.LoadTokens(ctx, scope)
	if err != nil {
		h.log.WithError(err).Warn("Failed to load tokens during disconnect")
	}
	if found {
		revokeTarget := tokens.RefreshToken
		if revokeTarget == "" {
			revokeTarget = tokens.AccessToken
		}
		if err := h.container.TokenManager.Revoke(ctx, revokeTarget); err != nil {
			h.log.WithError(err).Warn("Token revocation failed, removing local state anyway")
		}
	}

	if err := h.container.Settings.DeleteTokens(ctx, scope); err != nil {
		writeError(w, h.log, errors.NewInternalError("failed to remove stored tokens", err))
		return
	}
	if err := h.container.Settings.DeleteConnection(ctx, scope); err != nil {
		writeError(w, h.log, errors.NewInternalError("failed to remove stored connection", err))
		return
	}
	if _, err := h.container.ReportCache.ClearAll(ctx); err != nil {
		h.log.WithError(err).Warn("Failed to clear report cache during disconnect")
	}

	h.log.WithField("scope", scope).Info("Google Analytics disconnected")
	writeSuccess(w, http.StatusOK, map[string]bool{"disconnected": true})
}

// requireTokens loads a scope's token set or fails with an auth error.
func (h *BridgeHandler) requireTokens(ctx context.Context, scope string) (domain.TokenSet, error) {
	tokens, found, err := h.container.Settings.LoadTokens(ctx, scope)
	if err != nil {
		return domain.TokenSet{}, errors.NewInternalError("failed to load tokens", err)
	}
	if !found {
		return domain.TokenSet{}, errors.NewAuthError("Google Analytics is not connected", nil)
	}
	return tokens, nil
}

// persistTokens saves a possibly-refreshed token set; a write failure
// is logged, not fatal, because the current request already holds a
// usable token.
func (h *BridgeHandler) persistTokens(ctx context.Context, scope string, tokens domain.TokenSet) {
	if err := h.container.Settings.SaveTokens(ctx, scope, tokens); err != nil {
		h.log.WithError(err).Warn("Failed to persist refreshed tokens")
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
