package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Outbound HTTP helpers shared by both provider adapters. The bearer
// token is attached to each request individually, never to shared
// client state, so concurrent requests for different users cannot
// contaminate each other.

// PostForm sends a form-encoded POST (OAuth token endpoints) and
// decodes the JSON response into out. Any non-2xx status is a
// RequestError; no retry is attempted.
func PostForm(ctx context.Context, client *http.Client, provider Provider, op, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return send(client, req, provider, op, out)
}

// DoJSON sends a JSON request with a per-call bearer token and decodes
// the JSON response into out. payload and out may be nil.
func DoJSON(ctx context.Context, client *http.Client, provider Provider, op, method, endpoint, accessToken string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return send(client, req, provider, op, out)
}

func send(client *http.Client, req *http.Request, provider Provider, op string, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", provider, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &RequestError{
			Provider:   provider,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}

	// Some provider calls (Salesforce PATCH) return 204 with no body.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
