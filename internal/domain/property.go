package domain

import "strings"

// Generation identifies which Google Analytics API generation a
// property belongs to.
type Generation string

const (
	// GenerationGA4 is Google Analytics 4 (Admin API + Data API v1beta).
	GenerationGA4 Generation = "GA4"
	// GenerationUA is legacy Universal Analytics (Management/Reporting API v3).
	GenerationUA Generation = "UA"
)

// Account is a Google Analytics account as returned by the upstream
// listing APIs. Returned in upstream order, never re-sorted.
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// PropertyRef identifies a reportable Analytics data source: a GA4
// property or a UA view (profile). Immutable once fetched.
type PropertyRef struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"name"`
	Generation    Generation `json:"generation"`
	MeasurementID string     `json:"measurement_id,omitempty"`
	AccountID     string     `json:"account_id,omitempty"`
	WebsiteURL    string     `json:"website_url,omitempty"`
}

// Connection is the persisted record of which property the bridge is
// reporting against. Scope distinguishes a site-wide connection from a
// per-user one; the core treats it as an opaque namespace.
type Connection struct {
	PropertyID    string     `json:"property_id"`
	PropertyName  string     `json:"property_name"`
	Generation    Generation `json:"generation"`
	MeasurementID string     `json:"measurement_id,omitempty"`
	Scope         string     `json:"scope"`
}

// DetectGeneration classifies a bare analytics identifier. Measurement
// IDs carry a "G-" prefix and purely numeric ids are UA view ids;
// anything else is treated as GA4, the current generation.
func DetectGeneration(id string) Generation {
	if strings.HasPrefix(id, "G-") {
		return GenerationGA4
	}
	if id != "" && isDigits(id) {
		return GenerationUA
	}
	return GenerationGA4
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
