// Package chunk splits text into token-bounded segments.
//
// Splitting happens in token space: the text is encoded once, partitioned
// into consecutive windows, and each window is decoded back to text. The
// windows cover the whole token sequence with no gaps or overlaps, so the
// concatenated chunks preserve reading order.
package chunk

import (
	"github.com/ragtime-dev/ragtime/internal/token"
)

const (
	// DefaultMaxTokens is the default model context limit used for chunking.
	DefaultMaxTokens = 512

	// TokenOverhead is a fixed reserve subtracted from the limit to leave
	// room for control tokens.
	TokenOverhead = 8
)

// Split partitions text into segments of at most maxTokens-TokenOverhead
// tokens each. A text at or under the effective limit is returned
// unchanged as a single segment; the equality boundary does not split.
// Tokenizer failures propagate and no partial chunk list is returned.
func Split(text string, tok token.Tokenizer, maxTokens int) ([]string, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	effectiveMax := maxTokens - TokenOverhead
	if effectiveMax < 1 {
		effectiveMax = 1
	}

	tokens, err := tok.Encode(text)
	if err != nil {
		return nil, err
	}

	if len(tokens) <= effectiveMax {
		return []string{text}, nil
	}

	chunks := make([]string, 0, (len(tokens)+effectiveMax-1)/effectiveMax)
	for start := 0; start < len(tokens); start += effectiveMax {
		end := start + effectiveMax
		if end > len(tokens) {
			end = len(tokens)
		}
		segment, err := tok.Decode(tokens[start:end])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, segment)
	}

	return chunks, nil
}
