package client

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

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Client handles communication with the Danswer API server
type Client struct {
	BaseURL    string
	APIKey     string
	Version    string
	HTTPClient *http.Client
}

// User carries the identity a request is performed as. The client never
// inspects it beyond copying its headers onto the outgoing request.
type User struct {
	Email   string
	Headers map[string]string
}

// New creates a new Danswer API client
func New(baseURL, apiKey, version string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Version: version,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is returned for any non-2xx response from the API server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// doRequest performs an HTTP request as the given user. A nil user falls back
// to the client's API key.
func (c *Client) doRequest(ctx context.Context, user *User, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("terraform-provider-danswer/%s", c.Version))
	if user != nil && len(user.Headers) > 0 {
		for k, v := range user.Headers {
			req.Header.Set(k, v)
		}
	} else if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	tflog.Debug(ctx, "Making API request", map[string]any{
		"method": method,
		"url":    url,
	})

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	tflog.Debug(ctx, "Received API response", map[string]any{
		"status_code": resp.StatusCode,
	})

	return resp, nil
}

// handleResponse processes the HTTP response and unmarshals into target
func (c *Client) handleResponse(ctx context.Context, resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		tflog.Error(ctx, "API error response", map[string]any{
			"status_code": resp.StatusCode,
		})
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if target != nil && len(body) > 0 {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// do combines doRequest and handleResponse for the common case.
func (c *Client) do(ctx context.Context, user *User, method, path string, body, target interface{}) error {
	resp, err := c.doRequest(ctx, user, method, path, body)
	if err != nil {
		return err
	}
	return c.handleResponse(ctx, resp, target)
}

// IsNotFoundError checks if an error is a 404 Not Found error
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
