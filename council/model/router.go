package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Router dispatches each request to a backend Client selected by the
// provider prefix of the model identifier ("anthropic/claude-opus-4.6"
// routes to the client registered for "anthropic"). Identifiers with no
// registered prefix fall through to the fallback client when one is set.
//
// The usual composition is OpenRouter as the fallback with no prefixes
// registered, or no fallback with the direct provider adapters registered
// under "openai", "anthropic" and "google".
type Router struct {
	mu       sync.RWMutex
	byPrefix map[string]Client
	fallback Client
}

// NewRouter creates a Router. fallback may be nil, in which case every
// model identifier must match a registered prefix.
func NewRouter(fallback Client) *Router {
	return &Router{
		byPrefix: make(map[string]Client),
		fallback: fallback,
	}
}

// Register binds a provider prefix to a client. Registering the same
// prefix again replaces the previous binding.
func (r *Router) Register(prefix string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPrefix[prefix] = c
}

// Complete implements Client.
func (r *Router) Complete(ctx context.Context, modelName string, messages []Message) (Completion, error) {
	c := r.clientFor(modelName)
	if c == nil {
		return Completion{}, fmt.Errorf("no backend registered for model %q", modelName)
	}
	return c.Complete(ctx, modelName, messages)
}

func (r *Router) clientFor(modelName string) Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := strings.IndexByte(modelName, '/'); i > 0 {
		if c, ok := r.byPrefix[modelName[:i]]; ok {
			return c
		}
	}
	return r.fallback
}
