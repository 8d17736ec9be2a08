// Package openai provides a direct model.Client adapter for the OpenAI
// API, used when running without an OpenRouter key.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/council-go/council/model"
)

// Client implements model.Client for the OpenAI chat completions API.
// Safe for concurrent use.
type Client struct {
	client  sdk.Client
	timeout time.Duration
}

// New creates an OpenAI client. timeout bounds each call; zero means no
// bound beyond the caller's context.
func New(apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	return &Client{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
	}, nil
}

// Complete implements model.Client. The provider prefix is stripped from
// the model identifier before the request is issued.
func (c *Client) Complete(ctx context.Context, modelName string, messages []model.Message) (model.Completion, error) {
	if err := ctx.Err(); err != nil {
		return model.Completion{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	completion, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(stripProvider(modelName)),
		Messages: convertMessages(messages),
	})
	if err != nil {
		return model.Completion{}, fmt.Errorf("openai: %s: %w", modelName, err)
	}
	if len(completion.Choices) == 0 {
		return model.Completion{}, fmt.Errorf("openai: %s: empty response", modelName)
	}
	return model.Completion{Content: completion.Choices[0].Message.Content}, nil
}

func convertMessages(messages []model.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, sdk.SystemMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, sdk.AssistantMessage(msg.Content))
		default:
			out = append(out, sdk.UserMessage(msg.Content))
		}
	}
	return out
}

func stripProvider(modelName string) string {
	if i := strings.IndexByte(modelName, '/'); i >= 0 {
		return modelName[i+1:]
	}
	return modelName
}
