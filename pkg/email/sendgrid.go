package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stockpinghq/stockping-backend/pkg/config"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

const (
	sendPath           = "/v3/mail/send"
	messageIDHeader    = "X-Message-Id"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBodyBytes  = 4096
)

// SendgridClient sends mail through the SendGrid v3 REST API.
type SendgridClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	logg       *logger.Logger
}

// NewSendgridClient builds a SendGrid-backed mail client.
func NewSendgridClient(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errors.New("sendgrid from address is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}
	return &SendgridClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		logg:       logg,
	}, nil
}

type sendgridPayload struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send posts the message to SendGrid. A non-2xx response becomes a structured
// rejection; only transport-level failures return an error.
func (c *SendgridClient) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if msg.To == "" {
		return nil, errors.New("recipient address is required")
	}

	payload := sendgridPayload{
		Personalizations: []sendgridPersonalization{{To: []sendgridAddress{{Email: msg.To}}}},
		From:             sendgridAddress{Email: c.from},
		Subject:          msg.Subject,
		Content:          []sendgridContent{{Type: "text/html", Value: msg.HTML}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &SendResult{
			Accepted:  true,
			MessageID: resp.Header.Get(messageIDHeader),
		}, nil
	}

	detail, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if readErr != nil {
		detail = nil
	}
	message := strings.TrimSpace(string(detail))
	if message == "" {
		message = resp.Status
	}
	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"status": resp.StatusCode,
			"to":     msg.To,
		})
		c.logg.Warn(logCtx, "sendgrid rejected message")
	}
	return &SendResult{
		Accepted:     false,
		ErrorMessage: message,
	}, nil
}
