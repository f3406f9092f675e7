// Package gateway implements the proxy that relays chat completion
// requests from clients to a configured model provider, keeping provider
// credentials off the client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Request is a validated relay request. Messages is the client's messages
// array, forwarded without inspection or rewriting.
type Request struct {
	Messages json.RawMessage
	Model    string
}

// Response is the provider's answer. For pass-through providers Status and
// Body are the upstream values verbatim; adapter providers synthesize a
// chat completion envelope.
type Response struct {
	Status int
	Body   []byte
}

// Provider turns a relay request into a provider response. A returned
// error means the provider could not be reached at all; provider-level
// failures (auth, bad model, overload) come back as a Response with the
// upstream status instead.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// ConfigError reports a provider that cannot serve requests because of
// missing server-side configuration, typically an absent credential.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "provider misconfigured: " + e.Reason
}

// endpoint describes a pass-through provider target.
type endpoint struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// builtinEndpoints are the pass-through targets known without a providers
// file. Both speak the same chat completions wire format.
var builtinEndpoints = map[string]endpoint{
	"openai": {
		URL:   "https://api.openai.com/v1/chat/completions",
		Model: "gpt-4o",
	},
	"mistral": {
		URL:   "https://api.mistral.ai/v1/chat/completions",
		Model: "mistral-large-latest",
	},
}

// providersFile is the YAML document accepted via GATEWAY_PROVIDERS_FILE.
type providersFile struct {
	Providers map[string]endpoint `yaml:"providers"`
}

// loadEndpoints returns the builtin targets, overlaid with entries from
// the given providers file if set.
func loadEndpoints(path string) (map[string]endpoint, error) {
	endpoints := make(map[string]endpoint, len(builtinEndpoints))
	for name, ep := range builtinEndpoints {
		endpoints[name] = ep
	}
	if path == "" {
		return endpoints, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	var doc providersFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse providers file: %w", err)
	}

	for name, ep := range doc.Providers {
		if ep.URL == "" {
			return nil, fmt.Errorf("provider %q: missing url", name)
		}
		endpoints[name] = ep
	}
	return endpoints, nil
}

// passthroughProvider relays requests to an OpenAI-compatible chat
// completions endpoint with a bearer credential and returns the upstream
// status and body untouched.
type passthroughProvider struct {
	name       string
	url        string
	model      string
	apiKey     string
	httpClient *http.Client
}

func newPassthroughProvider(name string, ep endpoint, apiKey string) *passthroughProvider {
	return &passthroughProvider{
		name:   name,
		url:    ep.URL,
		model:  ep.Model,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (p *passthroughProvider) Name() string { return p.name }

func (p *passthroughProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p.apiKey == "" {
		return nil, &ConfigError{Reason: "missing API key"}
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	body, err := json.Marshal(struct {
		Model    string          `json:"model"`
		Messages json.RawMessage `json:"messages"`
	}{
		Model:    model,
		Messages: req.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}

// chatMessage is the wire shape of one message, decoded only by adapter
// providers that must translate the conversation for a non-OpenAI API.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// decodeMessages parses the relayed messages array for adapter providers.
func decodeMessages(raw json.RawMessage) ([]chatMessage, error) {
	var messages []chatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

// completionEnvelope synthesizes the chat completions response shape for
// adapter providers, so clients see one format regardless of provider.
func completionEnvelope(model, content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      fmt.Sprintf("routinely-%d", time.Now().UnixNano()),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]string{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	})
	return body
}
