package gen

import (
	"sync"

	"github.com/ragtime-dev/ragtime/internal/token"
)

// DefaultSystemPrompt seeds every new conversation.
const DefaultSystemPrompt = "You are a helpful assistant for answering questions based on the provided embedded documents."

// DefaultMaxHistoryTokens bounds conversation growth. When the history
// exceeds this budget the oldest non-system turns are evicted.
const DefaultMaxHistoryTokens = 8192

// Conversation holds an ordered message history starting with a single
// system turn. It is safe for concurrent use.
type Conversation struct {
	mu        sync.Mutex
	messages  []Message
	tok       token.Tokenizer
	maxTokens int
}

// NewConversation creates a conversation seeded with the given system
// prompt. An empty prompt falls back to the default.
func NewConversation(systemPrompt string, tok token.Tokenizer, maxTokens int) *Conversation {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if tok == nil {
		tok = token.NewWordTokenizer()
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxHistoryTokens
	}
	return &Conversation{
		messages:  []Message{{Role: RoleSystem, Content: systemPrompt}},
		tok:       tok,
		maxTokens: maxTokens,
	}
}

// Append records a completed user/assistant exchange and evicts the
// oldest non-system turns if the history exceeds the token budget.
func (c *Conversation) Append(userContent, assistantContent string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages,
		Message{Role: RoleUser, Content: userContent},
		Message{Role: RoleAssistant, Content: assistantContent},
	)
	c.evictLocked()
}

// Snapshot returns a copy of the history with the given user turn
// appended. The conversation itself is not modified; callers record the
// exchange with Append once a final answer exists.
func (c *Conversation) Snapshot(userContent string) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages), len(c.messages)+1)
	copy(out, c.messages)
	return append(out, Message{Role: RoleUser, Content: userContent})
}

// Messages returns a copy of the current history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of turns including the system turn.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Reset drops all history except the system turn.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = c.messages[:1]
}

// evictLocked removes the oldest turns after the system prompt until the
// history fits the token budget. The system turn is never evicted.
func (c *Conversation) evictLocked() {
	for len(c.messages) > 1 && c.totalTokensLocked() > c.maxTokens {
		c.messages = append(c.messages[:1], c.messages[2:]...)
	}
}

func (c *Conversation) totalTokensLocked() int {
	total := 0
	for _, m := range c.messages {
		// Uncountable content is treated as zero tokens; it already made
		// it into the history, so eviction accounting stays best-effort.
		n, err := token.Count(c.tok, m.Content)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
