// Package openrouter provides the model.Client adapter for the OpenRouter
// API, which serves every council model over one OpenAI-compatible endpoint.
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/council-go/council/model"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultTimeout bounds a single model call. Council models are routinely
// asked for long reasoning chains, so the bound is generous.
const DefaultTimeout = 120 * time.Second

// Client implements model.Client against OpenRouter.
//
// One Client carries one connection pool and is shared by every concurrent
// call across all council stages. It is safe for concurrent use.
type Client struct {
	client  openai.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL overrides the OpenRouter endpoint, for self-hosted gateways
// and tests.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithTimeout overrides the per-call timeout. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithHTTPClient supplies a custom HTTP client, sharing its transport and
// connection pool with the rest of the process.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// New creates an OpenRouter client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}

	s := settings{baseURL: DefaultBaseURL, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(s.baseURL),
	}
	if s.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.httpClient))
	}

	return &Client{
		client:  openai.NewClient(reqOpts...),
		timeout: s.timeout,
	}, nil
}

// Complete implements model.Client.
//
// Models that require elevated reasoning (model.EffortFor) get a
// reasoning.effort field injected into the request payload; OpenRouter
// forwards it to providers that understand it.
func (c *Client) Complete(ctx context.Context, modelName string, messages []model.Message) (model.Completion, error) {
	if err := ctx.Err(); err != nil {
		return model.Completion{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelName),
		Messages: convertMessages(messages),
	}

	var callOpts []option.RequestOption
	if effort := model.EffortFor(modelName); effort != model.EffortDefault {
		callOpts = append(callOpts, option.WithJSONSet("reasoning", map[string]any{
			"effort": string(effort),
		}))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params, callOpts...)
	if err != nil {
		return model.Completion{}, fmt.Errorf("openrouter: %s: %w", modelName, err)
	}
	if len(completion.Choices) == 0 {
		return model.Completion{}, fmt.Errorf("openrouter: %s: empty response", modelName)
	}

	msg := completion.Choices[0].Message
	return model.Completion{
		Content:   msg.Content,
		Reasoning: reasoningTrace(msg.JSON.ExtraFields["reasoning"].Raw()),
	}, nil
}

// convertMessages maps the gateway message format onto the SDK's request
// unions.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// reasoningTrace extracts the OpenRouter reasoning field, which is not
// part of the OpenAI schema and arrives as a raw extra field.
func reasoningTrace(raw string) string {
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// Non-string reasoning payloads (structured reasoning_details)
		// are kept verbatim.
		return raw
	}
	return s
}
