// Package assistant builds chat requests from session state, calls the
// proxy gateway and folds replies back into the conversation history.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"routinely/internal/session"
)

// Client is the HTTP client for the proxy gateway.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a gateway client. timeout bounds the full round-trip,
// including the upstream model call behind the gateway.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatRequest is the gateway request payload.
type chatRequest struct {
	Messages []session.Message `json:"messages"`
	Model    string            `json:"model"`
}

// chatResponse mirrors the provider reply shape the gateway relays.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion posts the message sequence to the gateway and extracts
// the assistant reply text.
//
// Failure modes are distinguished for the caller: a network-level error is
// returned wrapped (transport failure), a non-2xx response becomes a
// *StatusError carrying status and raw body, and a 2xx response without
// reply text yields ErrNoContent.
func (c *Client) ChatCompletion(ctx context.Context, messages []session.Message, model string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Messages: messages,
		Model:    model,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}
	return parsed.Choices[0].Message.Content, nil
}
