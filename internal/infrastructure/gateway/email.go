package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mizuleaf/callscope/internal/config"
)

const emailRequestTimeout = 15 * time.Second

// EmailGateway sends transactional email. When no API key is configured the
// gateway reports itself disabled and callers skip email delivery entirely.
type EmailGateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
	from     string
}

func NewEmailGateway(conf config.Email) *EmailGateway {
	from := conf.From
	if from == "" {
		from = "noreply@example.com"
	}
	return &EmailGateway{
		client:   &http.Client{Timeout: emailRequestTimeout},
		endpoint: conf.Endpoint,
		apiKey:   conf.APIKey,
		from:     from,
	}
}

func (g *EmailGateway) Enabled() bool {
	return g.apiKey != ""
}

type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (g *EmailGateway) Send(ctx context.Context, to, subject, html string) error {
	if !g.Enabled() {
		return fmt.Errorf("email API key not configured")
	}

	payload, err := json.Marshal(emailRequest{
		From:    g.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email send failed: %s", string(body))
	}

	return nil
}
