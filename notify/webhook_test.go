package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forwardfin/sweep/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func TestWebhookConfigValidate(t *testing.T) {
	// Ensure webhook config validation works as expected.
	cfg := WebhookConfig{}
	assert.Error(t, cfg.Validate())

	cfg = WebhookConfig{
		URL:    "http://localhost/webhook",
		Logger: &log.Logger,
	}
	assert.NoError(t, cfg.Validate())
}

func TestWebhookNotify(t *testing.T) {
	payload := shared.NotificationPayload{
		Market:     "^NDX",
		Direction:  "long",
		Entry:      79.5,
		Stop:       78,
		Target:     110,
		Size:       13.33,
		Confidence: 70,
		Narrative:  "Moderate long signal for ^NDX.",
	}

	var received shared.NotificationPayload
	var calls int
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))
		assert.Equal(t, r.Header.Get("Content-Type"), "application/json")
		w.WriteHeader(http.StatusOK)
	}))
	defer svr.Close()

	webhook, err := NewWebhook(&WebhookConfig{URL: svr.URL, Logger: &log.Logger})
	assert.NoError(t, err)

	// Ensure a delivered payload round-trips intact.
	ctx := context.Background()
	assert.NoError(t, webhook.Notify(ctx, payload))
	assert.Equal(t, calls, 1)
	assert.Equal(t, received, payload)
}

func TestWebhookNotifyRetries(t *testing.T) {
	var calls int
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer svr.Close()

	webhook, err := NewWebhook(&WebhookConfig{URL: svr.URL, Logger: &log.Logger})
	assert.NoError(t, err)

	// Ensure a failed delivery is retried once.
	ctx := context.Background()
	assert.NoError(t, webhook.Notify(ctx, shared.NotificationPayload{Market: "^NDX"}))
	assert.Equal(t, calls, 2)

	// Ensure a persistently failing endpoint surfaces an error.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	webhook, err = NewWebhook(&WebhookConfig{URL: failing.URL, Logger: &log.Logger})
	assert.NoError(t, err)
	assert.Error(t, webhook.Notify(ctx, shared.NotificationPayload{Market: "^NDX"}))
}
