package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragtime-dev/ragtime/internal/gen"
	"github.com/ragtime-dev/ragtime/internal/token"
)

// DefaultSummaryBudget is the token budget above which assembled context
// is condensed by the generator before prompting.
const DefaultSummaryBudget = 3000

const summaryInstruction = "The following is a long context extracted from several documents. " +
	"Summarize the key points and important details concisely:\n\n"

// Assemble concatenates retrieved documents into a labeled context block,
// in retrieval-rank order. If the result exceeds the token budget it is
// condensed by a single generator pass; the summary replaces the raw
// context even if it still exceeds the budget (chunked dispatch handles
// that downstream). A generator failure surfaces rather than degrading
// into truncated context.
func Assemble(ctx context.Context, docs []ScoredDocument, g gen.Generator, tok token.Tokenizer, budget int) (string, error) {
	if budget <= 0 {
		budget = DefaultSummaryBudget
	}

	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, fmt.Sprintf("Source: %s\nContent: %s", d.Document.Source, d.Document.Content))
	}
	assembled := strings.Join(blocks, "\n")

	count, err := token.Count(tok, assembled)
	if err != nil {
		return "", err
	}
	if count <= budget {
		return assembled, nil
	}

	summary, err := g.Generate(ctx, []gen.Message{
		{Role: gen.RoleUser, Content: summaryInstruction + assembled},
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}
