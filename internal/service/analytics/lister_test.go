package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ga-bridge/internal/domain"
	"ga-bridge/pkg/errors"
)

func ga4AdminStub(t *testing.T, streamsFailFor string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts": [{"name": "accounts/100", "displayName": "Acme"}]}`))
	})
	mux.HandleFunc("/properties", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parent:accounts/100", r.URL.Query().Get("filter"))
		w.Write([]byte(`{"properties": [
			{"name": "properties/111", "displayName": "Site A", "parent": "accounts/100"},
			{"name": "properties/222", "displayName": "Site B", "parent": "accounts/100"}
		]}`))
	})
	mux.HandleFunc("/properties/111/dataStreams", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dataStreams": [
			{"name": "properties/111/dataStreams/1", "type": "WEB_DATA_STREAM",
			 "webStreamData": {"measurementId": "G-ABC123"}}
		]}`))
	})
	mux.HandleFunc("/properties/222/dataStreams", func(w http.ResponseWriter, r *http.Request) {
		if streamsFailFor == "222" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"dataStreams": []}`))
	})
	return httptest.NewServer(mux)
}

func TestListGA4Properties(t *testing.T) {
	server := ga4AdminStub(t, "")
	defer server.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs(server.URL, "")

	props, err := lister.ListGA4Properties(context.Background(), testToken())
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, "111", props[0].ID)
	assert.Equal(t, "Site A", props[0].DisplayName)
	assert.Equal(t, domain.GenerationGA4, props[0].Generation)
	assert.Equal(t, "G-ABC123", props[0].MeasurementID)
	assert.Equal(t, "100", props[0].AccountID)

	// No web stream means no measurement id, not an error.
	assert.Equal(t, "", props[1].MeasurementID)
}

func TestListGA4Properties_StreamLookupFailureIsNotFatal(t *testing.T) {
	server := ga4AdminStub(t, "222")
	defer server.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs(server.URL, "")

	props, err := lister.ListGA4Properties(context.Background(), testToken())
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "G-ABC123", props[0].MeasurementID)
	assert.Equal(t, "", props[1].MeasurementID)
}

func TestListUAProfiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/management/accounts/~all/webproperties/~all/profiles", r.URL.Path)
		w.Write([]byte(`{"items": [
			{"id": "7654321", "name": "All Web Site Data", "accountId": "100", "websiteUrl": "https://acme.example"}
		]}`))
	}))
	defer server.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs("", server.URL)

	profiles, err := lister.ListUAProfiles(context.Background(), testToken())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "7654321", profiles[0].ID)
	assert.Equal(t, domain.GenerationUA, profiles[0].Generation)
	assert.Equal(t, "https://acme.example", profiles[0].WebsiteURL)
}

func TestListProperties_CombinesGenerations(t *testing.T) {
	adminServer := ga4AdminStub(t, "")
	defer adminServer.Close()

	uaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "7654321", "name": "Legacy View", "accountId": "100"}]}`))
	}))
	defer uaServer.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs(adminServer.URL, uaServer.URL)

	props, err := lister.ListProperties(context.Background(), testToken())
	require.NoError(t, err)
	require.Len(t, props, 3)
	// GA4 first, UA appended.
	assert.Equal(t, domain.GenerationGA4, props[0].Generation)
	assert.Equal(t, domain.GenerationUA, props[2].Generation)
}

func TestListProperties_UAOnlyAccount(t *testing.T) {
	adminServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"no GA4 access"}}`))
	}))
	defer adminServer.Close()

	uaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "7654321", "name": "Legacy View"}]}`))
	}))
	defer uaServer.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs(adminServer.URL, uaServer.URL)

	props, err := lister.ListProperties(context.Background(), testToken())
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, domain.GenerationUA, props[0].Generation)
}

func TestListProperties_AuthFailureSurfaces(t *testing.T) {
	adminServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"status":"UNAUTHENTICATED","message":"expired"}}`))
	}))
	defer adminServer.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs(adminServer.URL, "")

	_, err := lister.ListProperties(context.Background(), testToken())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
}

func TestListAccounts_FallsBackToUA(t *testing.T) {
	adminServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts": []}`))
	}))
	defer adminServer.Close()

	uaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "100", "name": "Acme Legacy"}]}`))
	}))
	defer uaServer.Close()

	lister := NewLister(zap.NewNop())
	lister.SetBaseURLs(adminServer.URL, uaServer.URL)

	accounts, err := lister.ListAccounts(context.Background(), testToken())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "100", accounts[0].ID)
	assert.Equal(t, "Acme Legacy", accounts[0].DisplayName)
}
