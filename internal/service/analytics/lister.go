package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/errors"
)

const (
	defaultAdminBaseURL  = "https://analyticsadmin.googleapis.com/v1beta"
	defaultUAMgmtBaseURL = "https://www.googleapis.com/analytics/v3"
)

// Lister discovers the accounts and properties the authorized user can
// report on, across both API generations.
type Lister struct {
	api           *apiClient
	adminBaseURL  string
	uaMgmtBaseURL string
	log           *zap.Logger
}

// NewLister creates a property lister.
func NewLister(log *zap.Logger) *Lister {
	return &Lister{
		api:           newAPIClient(),
		adminBaseURL:  defaultAdminBaseURL,
		uaMgmtBaseURL: defaultUAMgmtBaseURL,
		log:           log,
	}
}

// SetBaseURLs overrides the upstream API roots. Tests point these at
// local stub servers.
func (l *Lister) SetBaseURLs(adminBaseURL, uaMgmtBaseURL string) {
	if adminBaseURL != "" {
		l.adminBaseURL = adminBaseURL
	}
	if uaMgmtBaseURL != "" {
		l.uaMgmtBaseURL = uaMgmtBaseURL
	}
}

// ListAccounts returns the user's GA4 accounts, falling back to the UA
// management API when the Admin API yields nothing.
func (l *Lister) ListAccounts(ctx context.Context, ts domain.TokenSet) ([]domain.Account, error) {
	var ga4Resp ga4AccountsResponse
	ga4Err := l.api.doGet(ctx, l.adminBaseURL+"/accounts", ts, &ga4Resp)
	if ga4Err == nil && len(ga4Resp.Accounts) > 0 {
		accounts := make([]domain.Account, 0, len(ga4Resp.Accounts))
		for _, a := range ga4Resp.Accounts {
			accounts = append(accounts, domain.Account{
				ID:          strings.TrimPrefix(a.Name, "accounts/"),
				Name:        a.Name,
				DisplayName: a.DisplayName,
			})
		}
		return accounts, nil
	}

	var uaResp uaAccountsResponse
	if err := l.api.doGet(ctx, l.uaMgmtBaseURL+"/management/accounts", ts, &uaResp); err != nil {
		if ga4Err != nil {
			return nil, ga4Err
		}
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(uaResp.Items))
	for _, a := range uaResp.Items {
		accounts = append(accounts, domain.Account{
			ID:          a.ID,
			Name:        "accounts/" + a.ID,
			DisplayName: a.Name,
		})
	}
	return accounts, nil
}

// ListGA4Properties returns every GA4 property visible to the user,
// with the web stream's measurement id resolved where one exists. A
// failed dataStreams lookup leaves that property's measurement id empty
// rather than failing the whole listing.
func (l *Lister) ListGA4Properties(ctx context.Context, ts domain.TokenSet) ([]domain.PropertyRef, error) {
	var accountsResp ga4AccountsResponse
	if err := l.api.doGet(ctx, l.adminBaseURL+"/accounts", ts, &accountsResp); err != nil {
		return nil, err
	}

	var properties []domain.PropertyRef
	for _, account := range accountsResp.Accounts {
		listURL := fmt.Sprintf("%s/properties?filter=%s",
			l.adminBaseURL, url.QueryEscape("parent:"+account.Name))

		var propsResp ga4PropertiesResponse
		if err := l.api.doGet(ctx, listURL, ts, &propsResp); err != nil {
			return nil, err
		}

		for _, p := range propsResp.Properties {
			id := strings.TrimPrefix(p.Name, "properties/")
			properties = append(properties, domain.PropertyRef{
				ID:            id,
				DisplayName:   p.DisplayName,
				Generation:    domain.GenerationGA4,
				MeasurementID: l.lookupMeasurementID(ctx, ts, id),
				AccountID:     strings.TrimPrefix(account.Name, "accounts/"),
			})
		}
	}
	return properties, nil
}

// lookupMeasurementID finds the first web data stream's measurement id.
func (l *Lister) lookupMeasurementID(ctx context.Context, ts domain.TokenSet, propertyID string) string {
	var streamsResp ga4DataStreamsResponse
	streamsURL := fmt.Sprintf("%s/properties/%s/dataStreams", l.adminBaseURL, propertyID)
	if err := l.api.doGet(ctx, streamsURL, ts, &streamsResp); err != nil {
		l.log.Warn("data stream lookup failed",
			zap.String("property_id", propertyID),
			zap.Error(err))
		return ""
	}

	for _, stream := range streamsResp.DataStreams {
		if stream.WebStreamData != nil && stream.WebStreamData.MeasurementID != "" {
			return stream.WebStreamData.MeasurementID
		}
	}
	return ""
}

// ListUAProfiles returns every Universal Analytics view (profile)
// visible to the user.
func (l *Lister) ListUAProfiles(ctx context.Context, ts domain.TokenSet) ([]domain.PropertyRef, error) {
	profilesURL := l.uaMgmtBaseURL + "/management/accounts/~all/webproperties/~all/profiles"

	var resp uaProfilesResponse
	if err := l.api.doGet(ctx, profilesURL, ts, &resp); err != nil {
		return nil, err
	}

	properties := make([]domain.PropertyRef, 0, len(resp.Items))
	for _, p := range resp.Items {
		properties = append(properties, domain.PropertyRef{
			ID:          p.ID,
			DisplayName: p.Name,
			Generation:  domain.GenerationUA,
			AccountID:   p.AccountID,
			WebsiteURL:  p.WebsiteURL,
		})
	}
	return properties, nil
}

// ListProperties returns everything the user can report on, GA4
// properties first. One generation failing is tolerated as long as the
// other answers; both failing returns the GA4 error.
func (l *Lister) ListProperties(ctx context.Context, ts domain.TokenSet) ([]domain.PropertyRef, error) {
	ga4Props, ga4Err := l.ListGA4Properties(ctx, ts)
	if ga4Err != nil {
		// An auth failure will hit the UA call identically; surface it
		// now so the caller's refresh logic can react.
		if errors.IsType(ga4Err, errors.ErrorTypeAuth) {
			return nil, ga4Err
		}
		l.log.Warn("GA4 property listing failed, trying Universal Analytics only", zap.Error(ga4Err))
	}

	uaProps, uaErr := l.ListUAProfiles(ctx, ts)
	if uaErr != nil {
		if ga4Err != nil {
			return nil, ga4Err
		}
		// UA is sunset; many accounts have no v3 access at all.
		l.log.Debug("UA profile listing failed", zap.Error(uaErr))
	}

	return append(ga4Props, uaProps...), nil
}
