// Package whatsapp sends courier and customer notifications through a
// WhatsApp gateway over plain JSON-over-HTTP.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.Notifier against a WhatsApp gateway. Each
// notification kind maps to its own gateway endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a notifier for the gateway at baseURL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) NotifyCourier(ctx context.Context, leg ports.CourierLeg) error {
	return c.post(ctx, "/messages/courier-leg", leg)
}

func (c *Client) NotifyCustomer(ctx context.Context, update ports.CustomerUpdate) error {
	return c.post(ctx, "/messages/customer-update", update)
}

func (c *Client) NotifyBatchComplete(ctx context.Context, summary ports.BatchSummary) error {
	return c.post(ctx, "/messages/batch-summary", summary)
}

func (c *Client) RequestRating(ctx context.Context, request ports.RatingRequest) error {
	return c.post(ctx, "/messages/rating-request", request)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain a little of the body so the gateway's error shows up in logs.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
