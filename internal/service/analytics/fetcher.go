package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/errors"
)

const (
	defaultGA4DataBaseURL = "https://analyticsdata.googleapis.com/v1beta"
	defaultUADataBaseURL  = "https://www.googleapis.com/analytics/v3"
)

// tokenSource is the slice of the token manager the fetcher needs.
type tokenSource interface {
	GetValidToken(ctx context.Context, ts domain.TokenSet) (domain.TokenSet, error)
	Refresh(ctx context.Context, ts domain.TokenSet) (domain.TokenSet, error)
}

// Fetcher runs report queries against whichever API generation the
// query names, normalizes the response and caches the result.
type Fetcher struct {
	api            *apiClient
	tokens         tokenSource
	cache          *ReportCache
	ga4DataBaseURL string
	uaDataBaseURL  string
	log            *zap.Logger
}

// NewFetcher creates a report fetcher. cache may be nil when no Redis
// is configured; every fetch then goes upstream.
func NewFetcher(tokens tokenSource, cache *ReportCache, log *zap.Logger) *Fetcher {
	return &Fetcher{
		api:            newAPIClient(),
		tokens:         tokens,
		cache:          cache,
		ga4DataBaseURL: defaultGA4DataBaseURL,
		uaDataBaseURL:  defaultUADataBaseURL,
		log:            log,
	}
}

// SetBaseURLs overrides the upstream API roots. Tests point these at
// local stub servers.
func (f *Fetcher) SetBaseURLs(ga4DataBaseURL, uaDataBaseURL string) {
	if ga4DataBaseURL != "" {
		f.ga4DataBaseURL = ga4DataBaseURL
	}
	if uaDataBaseURL != "" {
		f.uaDataBaseURL = uaDataBaseURL
	}
}

// Fetch resolves a report query: cache first, then the upstream API
// with one refresh-and-retry on an auth failure. The returned token set
// must be persisted by the caller; it may have been refreshed.
func (f *Fetcher) Fetch(ctx context.Context, query domain.ReportQuery, ts domain.TokenSet) (*domain.ReportResult, domain.TokenSet, error) {
	if err := validateQuery(query); err != nil {
		return nil, ts, err
	}
	if query.Generation == "" {
		query.Generation = domain.DetectGeneration(query.PropertyID)
	}

	if cached, ok := f.cache.Get(ctx, query); ok {
		f.log.Debug("report served from cache",
			zap.String("property_id", query.PropertyID))
		return cached, ts, nil
	}

	ts, err := f.tokens.GetValidToken(ctx, ts)
	if err != nil {
		return nil, ts, err
	}

	result, err := f.fetchOnce(ctx, query, ts)
	if errors.IsType(err, errors.ErrorTypeAuth) {
		// The access token looked valid but upstream disagreed.
		// Refresh and retry exactly once; a second rejection is
		// terminal until the user reauthorizes.
		refreshed, refreshErr := f.tokens.Refresh(ctx, ts)
		if refreshErr != nil {
			return nil, ts, errors.NewAuthExpiredError("authorization expired, please reconnect Google Analytics", refreshErr)
		}
		ts = refreshed

		result, err = f.fetchOnce(ctx, query, ts)
		if errors.IsType(err, errors.ErrorTypeAuth) {
			return nil, ts, errors.NewAuthExpiredError("authorization expired, please reconnect Google Analytics", err)
		}
	}
	if err != nil {
		return nil, ts, err
	}

	f.attachChange(ctx, query, ts, result)
	f.cache.Set(ctx, query, result)

	return result, ts, nil
}

// fetchOnce performs a single upstream request, no retries.
func (f *Fetcher) fetchOnce(ctx context.Context, query domain.ReportQuery, ts domain.TokenSet) (*domain.ReportResult, error) {
	if query.Generation == domain.GenerationUA {
		return f.fetchUA(ctx, query, ts)
	}
	return f.fetchGA4(ctx, query, ts)
}

func (f *Fetcher) fetchGA4(ctx context.Context, query domain.ReportQuery, ts domain.TokenSet) (*domain.ReportResult, error) {
	body := ga4RunReportRequest{
		DateRanges: []ga4DateRange{{StartDate: query.StartDate, EndDate: query.EndDate}},
		Limit:      query.MaxResults,
	}
	for _, m := range query.Metrics {
		body.Metrics = append(body.Metrics, ga4Header{Name: m})
	}
	for _, d := range query.Dimensions {
		body.Dimensions = append(body.Dimensions, ga4Header{Name: d})
	}

	reportURL := fmt.Sprintf("%s/properties/%s:runReport", f.ga4DataBaseURL, query.PropertyID)

	var resp ga4RunReportResponse
	if err := f.api.doPost(ctx, reportURL, ts, body, &resp); err != nil {
		return nil, err
	}
	return NormalizeGA4(&resp), nil
}

func (f *Fetcher) fetchUA(ctx context.Context, query domain.ReportQuery, ts domain.TokenSet) (*domain.ReportResult, error) {
	params := url.Values{}
	params.Set("ids", "ga:"+query.PropertyID)
	params.Set("start-date", query.StartDate)
	params.Set("end-date", query.EndDate)
	params.Set("metrics", strings.Join(MapMetricsToUA(query.Metrics), ","))
	if len(query.Dimensions) > 0 {
		params.Set("dimensions", strings.Join(MapDimensionsToUA(query.Dimensions), ","))
	}
	if query.MaxResults > 0 {
		params.Set("max-results", strconv.Itoa(query.MaxResults))
	}

	reportURL := f.uaDataBaseURL + "/data/ga?" + params.Encode()

	var resp uaDataResponse
	if err := f.api.doGet(ctx, reportURL, ts, &resp); err != nil {
		return nil, err
	}
	return NormalizeUA(&resp), nil
}

// attachChange fills in period-over-period deltas by running the same
// query against the preceding period of equal length. Only queries with
// a date dimension produce totals worth comparing; a failed comparison
// fetch leaves the change at zero instead of failing the report.
func (f *Fetcher) attachChange(ctx context.Context, query domain.ReportQuery, ts domain.TokenSet, result *domain.ReportResult) {
	if !hasDimension(query.Dimensions, DimensionDate) {
		return
	}

	prevStart, prevEnd, err := previousPeriod(query.StartDate, query.EndDate)
	if err != nil {
		f.log.Warn("cannot derive comparison period", zap.Error(err))
		return
	}

	prevQuery := query
	prevQuery.StartDate = prevStart
	prevQuery.EndDate = prevEnd

	previous, err := f.fetchOnce(ctx, prevQuery, ts)
	if err != nil {
		f.log.Warn("comparison period fetch failed", zap.Error(err))
		return
	}

	result.Change = ComputeChange(result.Totals, previous.Totals)
}

// previousPeriod returns the equal-length period ending the day before
// start.
func previousPeriod(start, end string) (string, string, error) {
	const layout = "2006-01-02"

	startDate, err := time.Parse(layout, start)
	if err != nil {
		return "", "", fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endDate, err := time.Parse(layout, end)
	if err != nil {
		return "", "", fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if endDate.Before(startDate) {
		return "", "", fmt.Errorf("end date %q precedes start date %q", end, start)
	}

	span := endDate.Sub(startDate)
	prevEnd := startDate.AddDate(0, 0, -1)
	prevStart := prevEnd.Add(-span)

	return prevStart.Format(layout), prevEnd.Format(layout), nil
}

func validateQuery(query domain.ReportQuery) error {
	details := map[string]interface{}{}
	if query.PropertyID == "" {
		details["property_id"] = "required"
	}
	if query.StartDate == "" {
		details["start_date"] = "required"
	}
	if query.EndDate == "" {
		details["end_date"] = "required"
	}
	if len(query.Metrics) == 0 {
		details["metrics"] = "at least one metric is required"
	}
	if len(details) > 0 {
		return errors.NewValidationError("invalid report query", details)
	}
	return nil
}

func hasDimension(dimensions []string, name string) bool {
	for _, d := range dimensions {
		if d == name {
			return true
		}
	}
	return false
}
