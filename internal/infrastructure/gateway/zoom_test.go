package gateway

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizuleaf/callscope/internal/config"
)

func newTestZoomGateway(t *testing.T) *ZoomGateway {
	t.Helper()
	g := NewZoomGateway(config.Zoom{
		TokenEndpoint: "https://zoom.example/oauth/token",
		APIBase:       "https://api.zoom.example/v2",
	})
	httpmock.ActivateNonDefault(g.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return g
}

func TestExchangeTokenSendsAccountCredentialsGrant(t *testing.T) {
	g := newTestZoomGateway(t)

	httpmock.RegisterResponder(http.MethodPost, "https://zoom.example/oauth/token",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "account_credentials", req.PostForm.Get("grant_type"))
			assert.Equal(t, "acc-1", req.PostForm.Get("account_id"))

			expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("cid:secret"))
			assert.Equal(t, expected, req.Header.Get("Authorization"))

			return httpmock.NewJsonResponse(200, map[string]any{
				"access_token": "tok-123",
				"expires_in":   3600,
			})
		})

	token, err := g.ExchangeToken(context.Background(), "acc-1", "cid", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token.AccessToken)
	assert.Equal(t, 3600, token.ExpiresIn)
}

func TestExchangeTokenRejectsEmptyAccessToken(t *testing.T) {
	g := newTestZoomGateway(t)

	httpmock.RegisterResponder(http.MethodPost, "https://zoom.example/oauth/token",
		httpmock.NewStringResponder(200, `{"expires_in": 3600}`))

	_, err := g.ExchangeToken(context.Background(), "acc-1", "cid", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty access_token")
}

func TestExchangeTokenSurfacesUpstreamError(t *testing.T) {
	g := newTestZoomGateway(t)

	httpmock.RegisterResponder(http.MethodPost, "https://zoom.example/oauth/token",
		httpmock.NewStringResponder(400, `{"reason":"Invalid client_id or client_secret"}`))

	_, err := g.ExchangeToken(context.Background(), "acc-1", "cid", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid client_id")
}

func TestListRecordingsFollowsPagination(t *testing.T) {
	g := newTestZoomGateway(t)

	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.zoom\.example/v2/users/me/recordings`,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

			if req.URL.Query().Get("next_page_token") == "" {
				return httpmock.NewJsonResponse(200, map[string]any{
					"meetings":        []map[string]any{{"uuid": "m1", "topic": "商談A"}},
					"next_page_token": "page2",
				})
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"meetings":        []map[string]any{{"uuid": "m2", "topic": "商談B"}},
				"next_page_token": "",
			})
		})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	meetings, err := g.ListRecordings(context.Background(), "tok", "me", from, time.Time{})
	require.NoError(t, err)

	require.Len(t, meetings, 2)
	assert.Equal(t, "m1", meetings[0].UUID)
	assert.Equal(t, "m2", meetings[1].UUID)
}

func TestListRecordingsStopsAtPageLimit(t *testing.T) {
	g := newTestZoomGateway(t)

	// upstream that never stops handing out continuation tokens
	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.zoom\.example/v2/users/me/recordings`,
		httpmock.NewStringResponder(200, `{"meetings":[{"uuid":"m"}],"next_page_token":"again"}`))

	meetings, err := g.ListRecordings(context.Background(), "tok", "me", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, meetings, maxRecordingPages)
}
