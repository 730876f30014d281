package qa

import (
	"context"
	"strings"

	"github.com/ragtime-dev/ragtime/internal/chunk"
	"github.com/ragtime-dev/ragtime/internal/gen"
	"github.com/ragtime-dev/ragtime/internal/token"
)

// DefaultMaxPromptTokens bounds a single generator call; longer prompts
// are split and dispatched chunk by chunk.
const DefaultMaxPromptTokens = 2048

// Dispatch sends a prompt to the generator, splitting it into
// token-bounded chunks when it exceeds maxPromptTokens. Each chunk is
// generated against a snapshot of the conversation taken at dispatch
// time, so chunks never see each other's partial replies. The chunk
// responses are space-joined in order, and the full prompt plus the final
// answer enter the conversation exactly once.
func Dispatch(ctx context.Context, conv *gen.Conversation, g gen.Generator, tok token.Tokenizer, prompt string, maxPromptTokens int) (string, error) {
	if maxPromptTokens <= 0 {
		maxPromptTokens = DefaultMaxPromptTokens
	}

	chunks, err := chunk.Split(prompt, tok, maxPromptTokens)
	if err != nil {
		return "", err
	}

	responses := make([]string, 0, len(chunks))
	for _, c := range chunks {
		reply, err := g.Generate(ctx, conv.Snapshot(c))
		if err != nil {
			return "", err
		}
		responses = append(responses, reply)
	}

	answer := strings.Join(responses, " ")
	conv.Append(prompt, answer)
	return answer, nil
}
