package analytics

import (
	"math"
	"strconv"
	"strings"

	"ga-bridge/internal/domain"
)

// Canonical metric and dimension names. Queries are always expressed in
// GA4 vocabulary; the UA path translates on the way out and the
// normalizer folds both response shapes back into one schema.
const (
	MetricUsers       = "totalUsers"
	MetricPageviews   = "screenPageViews"
	MetricSessions    = "sessions"
	MetricEngagement  = "engagementRate"
	MetricConversions = "conversions"

	DimensionDate     = "date"
	DimensionPagePath = "pagePath"
	DimensionTitle    = "pageTitle"
	DimensionSource   = "sessionSource"
)

// metricsToUA maps canonical metric names to their v3 equivalents.
// engagementRate has no true UA counterpart; avgTimeOnPage is the
// closest proxy and what the upstream plugin used.
var metricsToUA = map[string]string{
	MetricUsers:       "ga:users",
	MetricPageviews:   "ga:pageviews",
	MetricSessions:    "ga:sessions",
	MetricEngagement:  "ga:avgTimeOnPage",
	MetricConversions: "ga:goalCompletionsAll",
}

var dimensionsToUA = map[string]string{
	DimensionDate:     "ga:date",
	DimensionPagePath: "ga:pagePath",
	DimensionTitle:    "ga:pageTitle",
	DimensionSource:   "ga:source",
}

// MapMetricsToUA translates canonical metric names for a v3 request.
// Unknown names pass through with a ga: prefix so custom metrics keep
// working.
func MapMetricsToUA(metrics []string) []string {
	out := make([]string, 0, len(metrics))
	for _, m := range metrics {
		if ua, ok := metricsToUA[m]; ok {
			out = append(out, ua)
			continue
		}
		if strings.HasPrefix(m, "ga:") {
			out = append(out, m)
			continue
		}
		out = append(out, "ga:"+m)
	}
	return out
}

// MapDimensionsToUA translates canonical dimension names for a v3 request.
func MapDimensionsToUA(dimensions []string) []string {
	out := make([]string, 0, len(dimensions))
	for _, d := range dimensions {
		if ua, ok := dimensionsToUA[d]; ok {
			out = append(out, ua)
			continue
		}
		if strings.HasPrefix(d, "ga:") {
			out = append(out, d)
			continue
		}
		out = append(out, "ga:"+d)
	}
	return out
}

// canonicalName folds a header from either generation onto the
// canonical vocabulary.
func canonicalName(name string) string {
	switch strings.TrimPrefix(name, "ga:") {
	case "users", MetricUsers:
		return MetricUsers
	case "pageviews", MetricPageviews:
		return MetricPageviews
	case "sessions":
		return MetricSessions
	case "avgTimeOnPage", MetricEngagement:
		return MetricEngagement
	case "goalCompletionsAll", MetricConversions:
		return MetricConversions
	case "date":
		return DimensionDate
	case "pagePath":
		return DimensionPagePath
	case "pageTitle":
		return DimensionTitle
	case "source", DimensionSource:
		return DimensionSource
	default:
		return strings.TrimPrefix(name, "ga:")
	}
}

// reportRow is one response row after header resolution, shared by both
// normalization paths.
type reportRow struct {
	dimensions map[string]string
	metrics    map[string]float64
}

// NormalizeGA4 folds a Data API runReport response into the unified
// report schema.
func NormalizeGA4(resp *ga4RunReportResponse) *domain.ReportResult {
	rows := make([]reportRow, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		row := reportRow{
			dimensions: make(map[string]string, len(resp.DimensionHeaders)),
			metrics:    make(map[string]float64, len(resp.MetricHeaders)),
		}
		for i, h := range resp.DimensionHeaders {
			if i < len(raw.DimensionValues) {
				row.dimensions[canonicalName(h.Name)] = raw.DimensionValues[i].Value
			}
		}
		for i, h := range resp.MetricHeaders {
			if i < len(raw.MetricValues) {
				row.metrics[canonicalName(h.Name)] = parseFloat(raw.MetricValues[i].Value)
			}
		}
		rows = append(rows, row)
	}

	result := normalizeRows(rows, domain.GenerationGA4)
	return result
}

// NormalizeUA folds a v3 Core Reporting response into the unified
// report schema. Columns are positional: headers carry the names, rows
// carry the values.
func NormalizeUA(resp *uaDataResponse) *domain.ReportResult {
	rows := make([]reportRow, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		row := reportRow{
			dimensions: make(map[string]string),
			metrics:    make(map[string]float64),
		}
		for i, h := range resp.ColumnHeaders {
			if i >= len(raw) {
				break
			}
			name := canonicalName(h.Name)
			if h.ColumnType == "DIMENSION" {
				row.dimensions[name] = raw[i]
			} else {
				row.metrics[name] = parseFloat(raw[i])
			}
		}
		rows = append(rows, row)
	}

	return normalizeRows(rows, domain.GenerationUA)
}

// normalizeRows classifies each row into exactly one result section.
// Priority: a date dimension wins, then page path or title, then
// traffic source. Rows with none of these contribute to no section.
func normalizeRows(rows []reportRow, gen domain.Generation) *domain.ReportResult {
	result := &domain.ReportResult{
		TimeSeries: []domain.TimeSeriesPoint{},
		TopContent: []domain.ContentEntry{},
		TopSources: []domain.SourceEntry{},
		Generation: gen,
	}

	for _, row := range rows {
		if date, ok := row.dimensions[DimensionDate]; ok {
			point := domain.TimeSeriesPoint{
				Date:      formatDate(date),
				Users:     int64(row.metrics[MetricUsers]),
				Pageviews: int64(row.metrics[MetricPageviews]),
				Sessions:  int64(row.metrics[MetricSessions]),
			}
			result.TimeSeries = append(result.TimeSeries, point)
			result.Totals.Users += point.Users
			result.Totals.Pageviews += point.Pageviews
			result.Totals.Sessions += point.Sessions
			continue
		}

		path, hasPath := row.dimensions[DimensionPagePath]
		title, hasTitle := row.dimensions[DimensionTitle]
		if hasPath || hasTitle {
			engagement := row.metrics[MetricEngagement]
			if gen == domain.GenerationGA4 {
				// GA4 reports a 0..1 fraction; UA's avgTimeOnPage is
				// already in its final unit (seconds).
				engagement = round1(engagement * 100)
			}
			result.TopContent = append(result.TopContent, domain.ContentEntry{
				Path:           path,
				Title:          title,
				Pageviews:      int64(row.metrics[MetricPageviews]),
				Users:          int64(row.metrics[MetricUsers]),
				EngagementRate: engagement,
			})
			continue
		}

		if source, ok := row.dimensions[DimensionSource]; ok {
			sessions := int64(row.metrics[MetricSessions])
			result.TopSources = append(result.TopSources, domain.SourceEntry{
				Source:         source,
				Sessions:       sessions,
				ConversionRate: conversionRate(row.metrics[MetricConversions], sessions),
			})
		}
	}

	return result
}

// ComputeChange derives period-over-period percentage deltas. A metric
// appearing from zero reads as +100%; zero to zero reads as no change.
func ComputeChange(current, previous domain.Totals) domain.Change {
	return domain.Change{
		Users:     pctChange(current.Users, previous.Users),
		Pageviews: pctChange(current.Pageviews, previous.Pageviews),
		Sessions:  pctChange(current.Sessions, previous.Sessions),
	}
}

func pctChange(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

func conversionRate(conversions float64, sessions int64) float64 {
	if sessions == 0 {
		return 0
	}
	return round1(conversions / float64(sessions) * 100)
}

// formatDate turns the APIs' YYYYMMDD date dimension into YYYY-MM-DD.
// Anything not eight digits long passes through untouched.
func formatDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
