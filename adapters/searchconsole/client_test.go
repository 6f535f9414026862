package searchconsole

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"seodash/domain/core"
	"seodash/domain/searchdata"
	"seodash/internal/config"
	apperrors "seodash/internal/errors"
	"seodash/ports"
)

func testConfig() config.SearchConsoleConfig {
	return config.SearchConsoleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
		RowLimit:     500,
	}
}

func newAPIServer(t *testing.T) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var lastQuery map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.EscapedPath() {
		case "/sites":
			w.Write([]byte(`{"siteEntry":[
				{"siteUrl":"https://example.com/","permissionLevel":"siteOwner"},
				{"siteUrl":"sc-domain:example.org","permissionLevel":"siteFullUser"}]}`))
		case "/sites/https:%2F%2Fexample.com%2F/searchAnalytics/query":
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&lastQuery))
			w.Write([]byte(`{"rows":[
				{"keys":["seo tips"],"clicks":42,"impressions":1000,"ctr":0.042,"position":3.1},
				{"keys":["backlinks"],"clicks":0,"impressions":50,"ctr":0,"position":22.4}]}`))
		case "/sites/https:%2F%2Fbroken.example%2F/searchAnalytics/query":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"User does not have sufficient permission"}}`))
		case "/sites/https:%2F%2Frevoked.example%2F/searchAnalytics/query":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &lastQuery
}

func signedInClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client := NewClient(testConfig(), nil, WithBaseURL(baseURL))
	client.SetToken(&oauth2.Token{AccessToken: "access-token", TokenType: "Bearer"})
	return client
}

func TestListSites(t *testing.T) {
	server, _ := newAPIServer(t)
	client := signedInClient(t, server.URL)

	sites, err := client.ListSites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ports.Site{
		{SiteURL: "https://example.com/", PermissionLevel: "siteOwner"},
		{SiteURL: "sc-domain:example.org", PermissionLevel: "siteFullUser"},
	}, sites)
}

func TestFetchReport(t *testing.T) {
	server, lastQuery := newAPIServer(t)
	client := signedInClient(t, server.URL)

	records, err := client.FetchReport(context.Background(), ports.ReportRequest{
		SiteURL:   "https://example.com/",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-28",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, searchdata.CategoryQuery, records[0].Category)
	assert.Equal(t, "seo tips", records[0].Key)
	assert.Equal(t, 42.0, records[0].Clicks)
	assert.Equal(t, 0.042, records[0].CTR)
	assert.Equal(t, "2024-03-01 to 2024-03-28", records[0].Date)
	assert.Equal(t, 22.4, records[1].Position)

	assert.Equal(t, "2024-03-01", (*lastQuery)["startDate"])
	assert.Equal(t, []interface{}{"query"}, (*lastQuery)["dimensions"])
	assert.Equal(t, 500.0, (*lastQuery)["rowLimit"])
}

func TestFetchReportDateDimension(t *testing.T) {
	server, lastQuery := newAPIServer(t)
	client := signedInClient(t, server.URL)

	records, err := client.FetchReport(context.Background(), ports.ReportRequest{
		SiteURL:   "https://example.com/",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-02",
		Category:  searchdata.CategoryDate,
		RowLimit:  100000,
	})
	require.NoError(t, err)
	assert.Equal(t, records[0].Key, records[0].Date)
	assert.Equal(t, []interface{}{"date"}, (*lastQuery)["dimensions"])
	assert.Equal(t, float64(maxRowLimit), (*lastQuery)["rowLimit"])
}

func TestFetchReportInvalidRequest(t *testing.T) {
	client := signedInClient(t, "http://127.0.0.1:0")

	tests := []struct {
		name string
		req  ports.ReportRequest
	}{
		{"missing site", ports.ReportRequest{StartDate: "2024-03-01", EndDate: "2024-03-02"}},
		{"bad category", ports.ReportRequest{SiteURL: "https://example.com/", StartDate: "2024-03-01", EndDate: "2024-03-02", Category: "keyword"}},
		{"bad date", ports.ReportRequest{SiteURL: "https://example.com/", StartDate: "03/01/2024", EndDate: "2024-03-02"}},
		{"reversed range", ports.ReportRequest{SiteURL: "https://example.com/", StartDate: "2024-03-05", EndDate: "2024-03-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FetchReport(context.Background(), tt.req)
			assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
		})
	}
}

func TestAPIErrors(t *testing.T) {
	server, _ := newAPIServer(t)
	client := signedInClient(t, server.URL)
	ctx := context.Background()

	_, err := client.FetchReport(ctx, ports.ReportRequest{SiteURL: "https://broken.example/", StartDate: "2024-03-01", EndDate: "2024-03-02"})
	assert.Equal(t, apperrors.CodeExternalService, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "sufficient permission")

	_, err = client.FetchReport(ctx, ports.ReportRequest{SiteURL: "https://revoked.example/", StartDate: "2024-03-01", EndDate: "2024-03-02"})
	assert.True(t, errors.Is(err, core.ErrNotAuthenticated))
	assert.False(t, client.Authenticated())
}

func TestNotAuthenticated(t *testing.T) {
	client := NewClient(testConfig(), nil)

	_, err := client.ListSites(context.Background())
	assert.True(t, errors.Is(err, core.ErrNotAuthenticated))
}

func TestOAuthFlow(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	client := NewClient(testConfig(), nil, WithEndpoint(oauth2.Endpoint{
		AuthURL:  "https://accounts.example/auth",
		TokenURL: tokenServer.URL,
	}))
	assert.True(t, client.Configured())

	redirect, err := url.Parse(client.AuthCodeURL())
	require.NoError(t, err)
	assert.Equal(t, "accounts.example", redirect.Host)
	assert.Equal(t, Scope, redirect.Query().Get("scope"))
	state := redirect.Query().Get("state")
	require.NotEmpty(t, state)

	err = client.Exchange(context.Background(), "forged", "auth-code")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	require.NoError(t, client.Exchange(context.Background(), state, "auth-code"))
	assert.True(t, client.Authenticated())

	// states are single use
	err = client.Exchange(context.Background(), state, "auth-code")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	client.SignOut()
	assert.False(t, client.Authenticated())
}
