// Package anthropic provides a direct model.Client adapter for Anthropic's
// Claude API, used when running without an OpenRouter key.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/council-go/council/model"
)

const defaultMaxTokens = 8192

// Client implements model.Client for the Anthropic Messages API.
// Safe for concurrent use; the SDK client handles its own pooling.
type Client struct {
	client  sdk.Client
	timeout time.Duration
}

// New creates an Anthropic client. timeout bounds each call; zero means
// no bound beyond the caller's context.
func New(apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	return &Client{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
	}, nil
}

// Complete implements model.Client.
//
// The provider prefix is stripped from the model identifier, and system
// messages are lifted into the API's separate system parameter.
func (c *Client) Complete(ctx context.Context, modelName string, messages []model.Message) (model.Completion, error) {
	if err := ctx.Err(); err != nil {
		return model.Completion{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	system, conversation := splitSystem(messages)

	params := sdk.MessageNewParams{
		Model:     sdk.Model(stripProvider(modelName)),
		MaxTokens: defaultMaxTokens,
		Messages:  conversation,
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return model.Completion{}, fmt.Errorf("anthropic: %s: %w", modelName, err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return model.Completion{Content: text.String()}, nil
}

// splitSystem separates system content from the conversation; the Messages
// API rejects system-role entries in the messages array.
func splitSystem(messages []model.Message) (string, []sdk.MessageParam) {
	var system strings.Builder
	conversation := make([]sdk.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
		case model.RoleAssistant:
			conversation = append(conversation, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
		default:
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		}
	}
	return system.String(), conversation
}

func stripProvider(modelName string) string {
	if i := strings.IndexByte(modelName, '/'); i >= 0 {
		return modelName[i+1:]
	}
	return modelName
}
