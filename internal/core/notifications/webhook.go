package notifications

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const SignatureHeader = "X-Storefront-Signature"

// WebhookPublisher POSTs events to a single subscriber URL.
type WebhookPublisher struct {
	URL    string
	Secret string
	Client *http.Client
}

func NewWebhookPublisher(url, secret string) *WebhookPublisher {
	// Don't let slow subscribers block the worker
	return &WebhookPublisher{URL: url, Secret: secret, Client: &http.Client{Timeout: 5 * time.Second}}
}

// Sign returns the hex HMAC-SHA256 of body, prefixed with "sha256=".
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (w *WebhookPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	// 1. Convert Payload to JSON
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	// 2. Prepare Request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Storefront-Webhook/1.0")
	req.Header.Set("X-Storefront-Event", ev.Type)
	if w.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.Secret, body))
	}

	// 3. Send
	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 4. Check Response
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook subscriber returned error: %d", resp.StatusCode)
}
