package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	SecretKey string `json:"secretKey" mapstructure:"secret_key"`
}

type Client struct {
	// baseURL is the base url of the Paystack API.
	baseURL string

	// secretKey authenticates every API call as a bearer token.
	secretKey string

	// hc is the http client.
	hc *http.Client
}

// newClient creates a new Paystack API client.
func newClient(_ context.Context, c *ClientConfig) *Client {
	return &Client{
		baseURL:   c.BaseURL,
		secretKey: c.SecretKey,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiEnvelope is Paystack's standard response wrapper.
type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs an authenticated API request and unmarshals the data
// envelope into out.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paystack: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("paystack: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("paystack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("paystack: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Status {
		return fmt.Errorf("paystack: %s %s: status %d: %s", method, path, resp.StatusCode, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("paystack: decode data: %w", err)
		}
	}

	return nil
}
