package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ReportQuery describes one report request. It is a value object:
// field equality defines cache identity.
type ReportQuery struct {
	PropertyID string     `json:"property_id"`
	Generation Generation `json:"generation"`
	StartDate  string     `json:"start_date"` // YYYY-MM-DD
	EndDate    string     `json:"end_date"`   // YYYY-MM-DD
	Metrics    []string   `json:"metrics"`
	Dimensions []string   `json:"dimensions"`
	MaxResults int        `json:"max_results,omitempty"`
}

// CacheKey derives a deterministic key for the query. Metrics and
// dimensions are sorted so that requests differing only in field order
// share a cache entry. MaxResults is deliberately excluded: it caps
// row count, it does not change what the rows mean.
func (q ReportQuery) CacheKey() string {
	metrics := append([]string(nil), q.Metrics...)
	sort.Strings(metrics)
	dimensions := append([]string(nil), q.Dimensions...)
	sort.Strings(dimensions)

	parts := []string{
		q.PropertyID,
		string(q.Generation),
		q.StartDate,
		q.EndDate,
		strings.Join(metrics, ","),
		strings.Join(dimensions, ","),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// TimeSeriesPoint is one date-bucketed row of the normalized report.
type TimeSeriesPoint struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Users     int64  `json:"users"`
	Pageviews int64  `json:"pageviews"`
	Sessions  int64  `json:"sessions"`
}

// ContentEntry is one page in the top-content section.
//
// EngagementRate is a percentage for GA4 rows but average seconds on
// page for UA rows; the upstream plugin merged the two without unit
// reconciliation and consumers depend on that, so it is preserved.
type ContentEntry struct {
	Path           string  `json:"path"`
	Title          string  `json:"title"`
	Pageviews      int64   `json:"pageviews"`
	Users          int64   `json:"users"`
	EngagementRate float64 `json:"engagement_rate"`
}

// SourceEntry is one traffic source in the top-sources section.
type SourceEntry struct {
	Source         string  `json:"source"`
	Sessions       int64   `json:"sessions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Totals are summed over the time-series rows.
type Totals struct {
	Users     int64 `json:"users"`
	Pageviews int64 `json:"pageviews"`
	Sessions  int64 `json:"sessions"`
}

// Change holds period-over-period percentage deltas.
type Change struct {
	Users     float64 `json:"users"`
	Pageviews float64 `json:"pageviews"`
	Sessions  float64 `json:"sessions"`
}

// ReportResult is the unified report schema. Its shape is identical
// for both API generations; Generation records which one produced it.
type ReportResult struct {
	TimeSeries []TimeSeriesPoint `json:"time_series"`
	TopContent []ContentEntry    `json:"top_content"`
	TopSources []SourceEntry     `json:"top_sources"`
	Totals     Totals            `json:"totals"`
	Change     Change            `json:"change"`
	Generation Generation        `json:"generation"`
}
