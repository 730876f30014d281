package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ragtime-dev/ragtime/internal/embed"
	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
	"github.com/ragtime-dev/ragtime/internal/gen"
	"github.com/ragtime-dev/ragtime/internal/store"
)

// Options tunes the answering pipeline. Zero values fall back to the
// package defaults.
type Options struct {
	TopK             int
	MinSimilarity    float64
	SummaryBudget    int
	MaxPromptTokens  int
	MaxHistoryTokens int
	SystemPrompt     string
}

// Engine answers questions against the indexed document store. One
// engine owns one conversation and one chat session; concurrent Answer
// calls serialize so each query observes a consistent store snapshot and
// conversation state.
type Engine struct {
	mu        sync.Mutex
	store     *store.Store
	embedder  embed.Embedder
	generator gen.Generator
	conv      *gen.Conversation
	sessionID string
	opts      Options
	logger    *slog.Logger
}

// NewEngine creates an answering engine bound to a session. An empty
// sessionID gets a generated UUID.
func NewEngine(s *store.Store, e embed.Embedder, g gen.Generator, sessionID string, opts Options, logger *slog.Logger) *Engine {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if opts.MinSimilarity == 0 {
		opts.MinSimilarity = DefaultMinSimilarity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     s,
		embedder:  e,
		generator: g,
		conv:      gen.NewConversation(opts.SystemPrompt, e.Tokenizer(), opts.MaxHistoryTokens),
		sessionID: sessionID,
		opts:      opts,
		logger:    logger,
	}
}

// SessionID returns the chat session this engine records history under.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Answer runs the full pipeline for one query: load the store, embed the
// query, retrieve relevant documents, assemble (and possibly summarize)
// context, dispatch the prompt, and record the exchange in chat history.
func (e *Engine) Answer(ctx context.Context, query string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return "", ragerr.New(ragerr.ErrCodeQueryEmpty, "query is empty", nil).
			WithSuggestion("Ask a question about the indexed documents")
	}

	docs, err := e.store.LoadAll(ctx)
	if err != nil {
		return "", err
	}

	queryVecs, err := embed.EmbedDocument(ctx, e.embedder, query)
	if err != nil {
		return "", err
	}
	queryVec := queryVecs[0]

	retrieved := Retrieve(queryVec, docs, e.opts.TopK, e.opts.MinSimilarity)
	e.logger.Debug("retrieved_documents",
		slog.String("session", e.sessionID),
		slog.Int("store_size", len(docs)),
		slog.Int("retrieved", len(retrieved)))

	contextText, err := Assemble(ctx, retrieved, e.generator, e.embedder.Tokenizer(), e.opts.SummaryBudget)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Using the following summarized context, answer the question:\n\nSummary:\n%s\n\nQuestion: %s\nAnswer:",
		contextText, query)

	answer, err := Dispatch(ctx, e.conv, e.generator, e.embedder.Tokenizer(), prompt, e.opts.MaxPromptTokens)
	if err != nil {
		return "", err
	}

	if err := e.recordExchange(ctx, query, answer, queryVec); err != nil {
		// The answer exists; a history write failure is logged, not fatal.
		e.logger.Warn("chat_history_write_failed",
			slog.String("session", e.sessionID),
			slog.String("error", err.Error()))
	}

	return answer, nil
}

func (e *Engine) recordExchange(ctx context.Context, query, answer string, queryVec []float32) error {
	answerVecs, err := embed.EmbedDocument(ctx, e.embedder, answer)
	if err != nil {
		return err
	}
	return e.store.AppendChat(ctx, store.ChatRecord{
		SessionID:     e.sessionID,
		UserMessage:   query,
		BotAnswer:     answer,
		UserEmbedding: queryVec,
		BotEmbedding:  answerVecs[0],
	})
}

// History returns the persisted exchanges for this engine's session.
func (e *Engine) History(ctx context.Context) ([]store.ChatRecord, error) {
	return e.store.HistoryBySession(ctx, e.sessionID)
}

// DeleteHistory removes all persisted exchanges for this engine's
// session and resets the in-memory conversation.
func (e *Engine) DeleteHistory(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.DeleteHistory(ctx, e.sessionID); err != nil {
		return err
	}
	e.conv.Reset()
	return nil
}
