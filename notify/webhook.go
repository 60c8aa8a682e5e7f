package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/forwardfin/sweep/shared"
	"github.com/rs/zerolog"
)

// requestTimeout bounds a single webhook delivery attempt.
const requestTimeout = time.Second * 5

// WebhookConfig is the configuration for the webhook notifier.
type WebhookConfig struct {
	// URL is the webhook endpoint alerts are delivered to.
	URL string
	// Logger is the notifier logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *WebhookConfig) Validate() error {
	var errs error

	if cfg.URL == "" {
		errs = errors.Join(errs, fmt.Errorf("webhook url cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Webhook delivers signal alerts as JSON posts to a configured endpoint.
type Webhook struct {
	cfg    *WebhookConfig
	client *http.Client
}

// Ensure the webhook implements the Notifier interface.
var _ shared.Notifier = (*Webhook)(nil)

// NewWebhook initializes a new webhook notifier.
func NewWebhook(cfg *WebhookConfig) (*Webhook, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &Webhook{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}, nil
}

// post delivers the provided body to the webhook endpoint.
func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected webhook status %d: %s", resp.StatusCode, string(msg))
	}

	return nil
}

// Notify delivers the provided payload to the webhook endpoint. A failed
// delivery is retried once before the error is surfaced.
func (w *Webhook) Notify(ctx context.Context, payload shared.NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling notification payload: %w", err)
	}

	err = w.post(ctx, body)
	if err == nil {
		return nil
	}

	w.cfg.Logger.Error().Msgf("webhook delivery failed, retrying: %v", err)

	return w.post(ctx, body)
}
