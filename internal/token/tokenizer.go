// Package token provides the tokenizer boundary used for chunking and
// token budgeting.
//
// Model backends own the real tokenizer; this package defines the contract
// the rest of the pipeline consumes, plus a heuristic word tokenizer used
// as the adapter handed out by embedders. Only encode/decode/count
// semantics matter here: a decode followed by an encode is not guaranteed
// to be byte-identical (whitespace is normalized), which is the accepted
// lossy boundary of the chunking contract.
package token

import (
	"strings"
	"unicode/utf8"

	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
)

// Tokenizer converts between text and token sequences.
type Tokenizer interface {
	// Encode splits text into an ordered token sequence.
	// Malformed input (invalid UTF-8) returns an encoding error and no
	// partial token list.
	Encode(text string) ([]string, error)

	// Decode reconstructs text from a token sequence.
	Decode(tokens []string) (string, error)
}

// Count returns the token count of text under the given tokenizer.
func Count(tok Tokenizer, text string) (int, error) {
	tokens, err := tok.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(tokens), nil
}

// WordTokenizer tokenizes on whitespace boundaries. Each token is a
// maximal non-whitespace run; Decode joins tokens with single spaces.
type WordTokenizer struct{}

// NewWordTokenizer creates a word tokenizer.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{}
}

// Encode implements Tokenizer.
func (t *WordTokenizer) Encode(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, ragerr.EncodingError("input is not valid UTF-8", nil)
	}
	return strings.Fields(text), nil
}

// Decode implements Tokenizer.
func (t *WordTokenizer) Decode(tokens []string) (string, error) {
	return strings.Join(tokens, " "), nil
}
