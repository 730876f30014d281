package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
)

// Ollama chat API constants.
const (
	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the default generation model.
	DefaultOllamaModel = "llama3.1"
)

// OllamaConfig configures the Ollama generator.
type OllamaConfig struct {
	// Host is the Ollama API endpoint (default: http://localhost:11434).
	Host string

	// Model is the generation model to use (default: llama3.1).
	Model string

	// MaxRetries for transient failures (default: 3).
	MaxRetries int

	// SkipHealthCheck skips the initial availability check (for testing).
	SkipHealthCheck bool
}

// ollamaChatRequest is the Ollama /api/chat request.
type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// ollamaChatResponse is the Ollama /api/chat response.
type ollamaChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// OllamaGenerator produces completions using Ollama's HTTP chat API.
//
// The mutex serializes all model calls: the backend is treated as a
// non-reentrant singleton, so concurrent queries queue rather than
// interleave on the same instance.
type OllamaGenerator struct {
	client *http.Client
	config OllamaConfig

	mu     sync.Mutex
	closed bool
}

// Verify interface implementation at compile time.
var _ Generator = (*OllamaGenerator)(nil)

// NewOllamaGenerator creates a new Ollama generator and, unless disabled,
// verifies the backend is reachable.
func NewOllamaGenerator(ctx context.Context, cfg OllamaConfig) (*OllamaGenerator, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	transport := &http.Transport{
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     10 * time.Second,
	}

	g := &OllamaGenerator{
		// No client timeout: generation latency is unbounded and callers
		// control cancellation through contexts.
		client: &http.Client{Transport: transport},
		config: cfg,
	}

	if !cfg.SkipHealthCheck {
		checkCtx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()

		if !g.Available(checkCtx) {
			transport.CloseIdleConnections()
			return nil, ragerr.New(ragerr.ErrCodeModelUnavailable,
				fmt.Sprintf("cannot reach Ollama at %s", cfg.Host), nil).
				WithSuggestion("Start Ollama with `ollama serve` or set the generator host in the config")
		}
	}

	return g, nil
}

// Generate returns the assistant reply to the given message sequence.
func (g *OllamaGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return "", fmt.Errorf("generator is closed")
	}
	if len(messages) == 0 {
		return "", ragerr.ValidationError("no messages to generate from", nil)
	}

	cfg := ragerr.DefaultRetryConfig()
	cfg.MaxRetries = g.config.MaxRetries

	reply, err := ragerr.RetryWithResult(ctx, cfg, func() (string, error) {
		return g.doChat(ctx, messages)
	})
	if err != nil {
		return "", ragerr.GenerationError("model call failed", err)
	}
	return reply, nil
}

func (g *OllamaGenerator) doChat(ctx context.Context, messages []Message) (string, error) {
	reqBody := ollamaChatRequest{
		Model:    g.config.Model,
		Messages: messages,
		Stream:   false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.Host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Message.Content, nil
}

// ModelName returns the model identifier.
func (g *OllamaGenerator) ModelName() string {
	return g.config.Model
}

// Available checks if the Ollama endpoint responds.
func (g *OllamaGenerator) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Close releases HTTP resources. Safe to call multiple times.
func (g *OllamaGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	if t, ok := g.client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
	return nil
}
