package gateway

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// bedrockProvider adapts the relay request to the Bedrock Converse API
// and synthesizes a chat completion envelope from its reply.
type bedrockProvider struct {
	client       *bedrockruntime.Client
	defaultModel string
}

func newBedrockProvider(ctx context.Context, region, defaultModel string) (*bedrockProvider, error) {
	if region == "" {
		return nil, &ConfigError{Reason: "missing AWS region"}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &bedrockProvider{
		client:       bedrockruntime.NewFromConfig(awsCfg),
		defaultModel: defaultModel,
	}, nil
}

func (p *bedrockProvider) Name() string { return "bedrock" }

func (p *bedrockProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	messages, err := decodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	// Converse takes system instructions separately from the turn list.
	var system []types.SystemContentBlock
	var turns []types.Message
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Content})
		case "assistant":
			turns = append(turns, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		default:
			turns = append(turns, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		}
	}

	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  &model,
		Messages: turns,
		System:   system,
	})
	if err != nil {
		return nil, fmt.Errorf("converse: %w", err)
	}

	content, err := extractConverseText(out)
	if err != nil {
		return nil, err
	}

	return &Response{Status: 200, Body: completionEnvelope(model, content)}, nil
}

func extractConverseText(out *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected converse output type %T", out.Output)
	}

	var content string
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			content += text.Value
		}
	}
	if content == "" {
		return "", fmt.Errorf("converse reply contained no text")
	}
	return content, nil
}
