package qa

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtime-dev/ragtime/internal/gen"
	"github.com/ragtime-dev/ragtime/internal/token"
)

func TestDispatchShortPromptSingleCall(t *testing.T) {
	conv := gen.NewConversation("", nil, 0)
	g := &stubGenerator{response: "the answer"}

	answer, err := Dispatch(context.Background(), conv, g, token.NewWordTokenizer(), "short question", 2048)
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	require.Len(t, g.calls, 1)

	// System turn plus the prompt as the newest user turn.
	msgs := g.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, gen.RoleSystem, msgs[0].Role)
	assert.Equal(t, "short question", msgs[1].Content)
}

func TestDispatchChunksLongPrompt(t *testing.T) {
	conv := gen.NewConversation("", nil, 0)
	g := &stubGenerator{}

	// 100 words against a 58-token window (66 - 8 overhead): two chunks.
	prompt := strings.TrimSpace(strings.Repeat("word ", 100))
	answer, err := Dispatch(context.Background(), conv, g, token.NewWordTokenizer(), prompt, 66)
	require.NoError(t, err)

	require.Len(t, g.calls, 2)
	// Space-joined chunk replies in order.
	assert.Equal(t, "reply 1 reply 2", answer)
}

func TestDispatchChunksSeeSnapshotNotEachOther(t *testing.T) {
	conv := gen.NewConversation("", nil, 0)
	conv.Append("earlier question", "earlier answer")
	g := &stubGenerator{}

	prompt := strings.TrimSpace(strings.Repeat("word ", 100))
	_, err := Dispatch(context.Background(), conv, g, token.NewWordTokenizer(), prompt, 66)
	require.NoError(t, err)

	require.Len(t, g.calls, 2)
	for _, call := range g.calls {
		// Each chunk saw system + prior exchange + itself, never another
		// chunk's reply.
		require.Len(t, call, 4)
		assert.Equal(t, "earlier answer", call[2].Content)
	}
}

func TestDispatchAppendsExactlyOnce(t *testing.T) {
	conv := gen.NewConversation("", nil, 0)
	g := &stubGenerator{}

	prompt := strings.TrimSpace(strings.Repeat("word ", 100))
	answer, err := Dispatch(context.Background(), conv, g, token.NewWordTokenizer(), prompt, 66)
	require.NoError(t, err)

	msgs := conv.Messages()
	// System turn plus one user/assistant pair for the whole dispatch.
	require.Len(t, msgs, 3)
	assert.Equal(t, prompt, msgs[1].Content)
	assert.Equal(t, answer, msgs[2].Content)
}

func TestDispatchGeneratorFailureLeavesConversationUntouched(t *testing.T) {
	conv := gen.NewConversation("", nil, 0)
	g := &stubGenerator{failWith: fmt.Errorf("backend down")}

	_, err := Dispatch(context.Background(), conv, g, token.NewWordTokenizer(), "question", 2048)
	require.Error(t, err)
	assert.Equal(t, 1, conv.Len())
}

func TestDispatchEncodingErrorPropagates(t *testing.T) {
	conv := gen.NewConversation("", nil, 0)
	g := &stubGenerator{}

	_, err := Dispatch(context.Background(), conv, g, token.NewWordTokenizer(), "bad \xff input", 2048)
	require.Error(t, err)
	assert.Empty(t, g.calls)
}
