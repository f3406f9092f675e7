package gateway

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// localProvider serves completions from a local Ollama instance and
// synthesizes a chat completion envelope, so the client never needs to
// know it is not talking to a hosted API.
type localProvider struct {
	llm   *ollama.LLM
	model string
}

func newLocalProvider(host, model string) (*localProvider, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if host != "" {
		opts = append(opts, ollama.WithServerURL(host))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}

	return &localProvider{llm: llm, model: model}, nil
}

func (p *localProvider) Name() string { return "local" }

func (p *localProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	messages, err := decodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	resp, err := p.llm.GenerateContent(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	return &Response{Status: 200, Body: completionEnvelope(p.model, resp.Choices[0].Content)}, nil
}
