package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrSenderNotConfigured = errors.New("WhatsApp API not configured")

// WhatsAppSender sends text messages through a wapost-style HTTP gateway
type WhatsAppSender struct {
	BaseURL     string
	InstanceID  string
	AccessToken string
	Client      *http.Client
}

func NewWhatsAppSender(baseURL, instanceID, accessToken string) *WhatsAppSender {
	return &WhatsAppSender{
		BaseURL:     baseURL,
		InstanceID:  instanceID,
		AccessToken: accessToken,
		Client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send delivers message to phone. The gateway expects the number without its leading plus.
func (w *WhatsAppSender) Send(ctx context.Context, phone, message string) error {
	if w.InstanceID == "" || w.AccessToken == "" || w.BaseURL == "" {
		return ErrSenderNotConfigured
	}

	q := url.Values{}
	q.Set("number", strings.TrimPrefix(phone, "+"))
	q.Set("type", "text")
	q.Set("message", message)
	q.Set("instance_id", w.InstanceID)
	q.Set("access_token", w.AccessToken)
	endpoint := strings.TrimRight(w.BaseURL, "/") + "/api/send?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// The request URL carries the message and the access token.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read whatsapp response: %w", err)
	}
	var out sendResponse
	_ = json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || out.Status != "success" {
		return fmt.Errorf("whatsapp API error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
