package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mizuleaf/callscope/internal/config"
	"github.com/mizuleaf/callscope/internal/domain"
)

const (
	zoomRequestTimeout = 30 * time.Second

	// maxRecordingPages bounds how far next_page_token is followed so a
	// misbehaving upstream cannot keep one sync request alive forever.
	maxRecordingPages = 10
)

// ZoomGateway talks to the meeting platform's server-to-server OAuth and
// recordings APIs.
type ZoomGateway struct {
	client        *http.Client
	tokenEndpoint string
	apiBase       string
}

func NewZoomGateway(conf config.Zoom) *ZoomGateway {
	return &ZoomGateway{
		client:        &http.Client{Timeout: zoomRequestTimeout},
		tokenEndpoint: conf.TokenEndpoint,
		apiBase:       strings.TrimRight(conf.APIBase, "/"),
	}
}

// Token is one account-credentials grant result.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeToken performs the account_credentials grant with basic-auth encoded
// client credentials. Non-2xx responses surface the response body; the caller
// decides what to do with the account.
func (g *ZoomGateway) ExchangeToken(ctx context.Context, accountID, clientID, clientSecret string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("zoom oauth request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Token{}, fmt.Errorf("zoom oauth failed: %s", string(body))
	}

	var token Token
	err = json.NewDecoder(resp.Body).Decode(&token)
	if err != nil {
		return Token{}, fmt.Errorf("failed to decode zoom oauth response: %v", err)
	}
	if token.AccessToken == "" {
		return Token{}, fmt.Errorf("zoom oauth returned empty access_token")
	}

	return token, nil
}

type recordingsResponse struct {
	Meetings      []domain.Meeting `json:"meetings"`
	NextPageToken string           `json:"next_page_token"`
}

// ListRecordings fetches all recordings for a user within the date range,
// following the continuation token until exhausted.
func (g *ZoomGateway) ListRecordings(ctx context.Context, accessToken, userID string, from, to time.Time) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	pageToken := ""

	for page := 0; page < maxRecordingPages; page++ {
		params := url.Values{}
		if !from.IsZero() {
			params.Set("from", from.Format("2006-01-02"))
		}
		if !to.IsZero() {
			params.Set("to", to.Format("2006-01-02"))
		}
		if pageToken != "" {
			params.Set("next_page_token", pageToken)
		}

		endpoint := fmt.Sprintf("%s/users/%s/recordings?%s", g.apiBase, url.PathEscape(userID), params.Encode())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("zoom recordings request failed: %v", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("zoom recordings failed: %s", string(body))
		}

		var parsed recordingsResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode zoom recordings response: %v", err)
		}

		meetings = append(meetings, parsed.Meetings...)

		if parsed.NextPageToken == "" {
			break
		}
		pageToken = parsed.NextPageToken
	}

	return meetings, nil
}
