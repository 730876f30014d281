// Package gen provides the text generation model boundary and the
// conversation state that feeds it.
//
// Like the embedding side, generation backends are external singleton
// processes reached over HTTP and calls into one handle are serialized.
package gen

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Common generation constants.
const (
	// DefaultConnectTimeout bounds the initial health check. Generation
	// requests themselves carry no timeout: a slow model producing a long
	// answer is not a failure.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient failures.
	DefaultMaxRetries = 3
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces chat completions from a message history.
type Generator interface {
	// Generate returns the assistant reply to the given message sequence.
	// The last message is expected to be the active user turn.
	Generate(ctx context.Context, messages []Message) (string, error)

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the generator is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}
