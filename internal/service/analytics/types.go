package analytics

// Wire types for the two Google Analytics API generations. Only the
// fields the bridge reads are declared; everything else in the
// responses is ignored by encoding/json.

// --- GA4 Data API (v1beta runReport) ---

type ga4Header struct {
	Name string `json:"name"`
}

type ga4Value struct {
	Value string `json:"value"`
}

type ga4Row struct {
	DimensionValues []ga4Value `json:"dimensionValues"`
	MetricValues    []ga4Value `json:"metricValues"`
}

type ga4RunReportResponse struct {
	DimensionHeaders []ga4Header `json:"dimensionHeaders"`
	MetricHeaders    []ga4Header `json:"metricHeaders"`
	Rows             []ga4Row    `json:"rows"`
	RowCount         int         `json:"rowCount"`
}

// ga4RunReportRequest is the POST body for runReport.
type ga4RunReportRequest struct {
	DateRanges []ga4DateRange `json:"dateRanges"`
	Metrics    []ga4Header    `json:"metrics"`
	Dimensions []ga4Header    `json:"dimensions,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

type ga4DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// --- GA4 Admin API (v1beta) ---

type ga4AccountsResponse struct {
	Accounts []ga4Account `json:"accounts"`
}

type ga4Account struct {
	Name        string `json:"name"` // accounts/{id}
	DisplayName string `json:"displayName"`
}

type ga4PropertiesResponse struct {
	Properties []ga4Property `json:"properties"`
}

type ga4Property struct {
	Name        string `json:"name"` // properties/{id}
	DisplayName string `json:"displayName"`
	Parent      string `json:"parent"` // accounts/{id}
}

type ga4DataStreamsResponse struct {
	DataStreams []ga4DataStream `json:"dataStreams"`
}

type ga4DataStream struct {
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	WebStreamData *ga4WebStreamData `json:"webStreamData,omitempty"`
}

type ga4WebStreamData struct {
	MeasurementID string `json:"measurementId"`
}

// --- Universal Analytics (Management + Core Reporting API v3) ---

type uaColumnHeader struct {
	Name       string `json:"name"` // ga:users, ga:date, ...
	ColumnType string `json:"columnType"`
	DataType   string `json:"dataType"`
}

type uaDataResponse struct {
	ColumnHeaders       []uaColumnHeader  `json:"columnHeaders"`
	Rows                [][]string        `json:"rows"`
	TotalResults        int               `json:"totalResults"`
	TotalsForAllResults map[string]string `json:"totalsForAllResults"`
}

type uaAccountsResponse struct {
	Items []uaAccount `json:"items"`
}

type uaAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type uaProfilesResponse struct {
	Items []uaProfile `json:"items"`
}

type uaProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AccountID  string `json:"accountId"`
	WebsiteURL string `json:"websiteUrl"`
}

// --- shared upstream error envelope ---

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
