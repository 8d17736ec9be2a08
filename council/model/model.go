// Package model provides the LLM backend gateway used by the council.
//
// The council core never talks to a provider directly; it issues requests
// through the Client interface and treats every backend uniformly. Adapters
// for OpenRouter and for the direct provider APIs live in subpackages.
package model

import "context"

// Client issues a single chat completion request to one backend model.
//
// Implementations should:
//   - Handle provider-specific authentication and payload format.
//   - Respect context cancellation and per-call timeouts.
//   - Return an error for any failure; callers decide whether a failed
//     call is fatal. Implementations never retry on behalf of the caller.
//
// A Client must be safe for concurrent use: both council stages fan the
// same Client out across many models at once.
type Client interface {
	// Complete sends messages to the named model and returns its completion.
	Complete(ctx context.Context, modelName string, messages []Message) (Completion, error)
}

// Message is a single message in a chat conversation, in the common
// role/content format shared by OpenRouter and the major provider APIs.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Standard role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completion is the successful result of one model call.
type Completion struct {
	// Content is the model's generated text.
	Content string

	// Reasoning holds the backend's reasoning trace when it exposes one
	// (OpenRouter reasoning_details). Empty for backends that do not.
	Reasoning string
}
