// Package google provides a direct model.Client adapter for Google's
// Gemini API, used when running without an OpenRouter key.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/council-go/council/model"
)

// Client implements model.Client for the Gemini API.
//
// The genai SDK couples client construction to a context, so a fresh SDK
// client is created per call and closed when the call settles. Safe for
// concurrent use.
type Client struct {
	apiKey  string
	timeout time.Duration
}

// New creates a Gemini client. timeout bounds each call; zero means no
// bound beyond the caller's context.
func New(apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google: API key is required")
	}
	return &Client{apiKey: apiKey, timeout: timeout}, nil
}

// Complete implements model.Client.
//
// System messages become the model's system instruction; the remaining
// conversation is flattened into content parts, matching how Gemini
// consumes multi-turn prompts.
func (c *Client) Complete(ctx context.Context, modelName string, messages []model.Message) (model.Completion, error) {
	if err := ctx.Err(); err != nil {
		return model.Completion{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return model.Completion{}, fmt.Errorf("google: %w", err)
	}
	defer func() { _ = client.Close() }()

	genModel := client.GenerativeModel(stripProvider(modelName))

	system, parts := convertMessages(messages)
	if system != "" {
		genModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := genModel.GenerateContent(ctx, parts...)
	if err != nil {
		return model.Completion{}, fmt.Errorf("google: %s: %w", modelName, err)
	}
	return model.Completion{Content: extractText(resp)}, nil
}

func convertMessages(messages []model.Message) (string, []genai.Part) {
	var system strings.Builder
	var parts []genai.Part

	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		if msg.Role == model.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	return system.String(), parts
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}

func stripProvider(modelName string) string {
	if i := strings.IndexByte(modelName, '/'); i >= 0 {
		return modelName[i+1:]
	}
	return modelName
}
