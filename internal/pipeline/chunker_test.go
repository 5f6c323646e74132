package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkShortInputReturnsSingleChunk(t *testing.T) {
	chunks := Chunk("  This is one short sentence.  ", 1500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "This is one short sentence.", chunks[0])
}

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", 1500))
	assert.Empty(t, Chunk("   \n\t ", 1500))
}

func TestChunkRespectsBudget(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("The mitochondria is the powerhouse of the cell, according to every textbook. ")
	}
	chunks := Chunk(sb.String(), 200)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 200, "chunk %d exceeds budget", i)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunkNeverSplitsSentences(t *testing.T) {
	text := "First sentence here. Second sentence follows! Third one asks a question? Fourth closes it."
	chunks := Chunk(text, 50)
	// Every chunk must end at a sentence boundary except possibly the last.
	for _, c := range chunks[:len(chunks)-1] {
		last := c[len(c)-1]
		assert.Contains(t, ".!?", string(last), "chunk %q does not end a sentence", c)
	}
	// Re-joining preserves the sentence sequence.
	joined := strings.Join(chunks, " ")
	assert.Equal(t, text, joined)
}

func TestChunkKeepsOversizedSentenceWhole(t *testing.T) {
	long := strings.Repeat("x", 300) + "."
	text := "Short one. " + long + " Short two."
	chunks := Chunk(text, 100)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Short one.", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "Short two.", chunks[2])
}

func TestChunkIsIdempotent(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Photosynthesis converts light energy into chemical energy inside chloroplasts. ")
	}
	first := Chunk(sb.String(), 300)
	second := Chunk(strings.Join(first, " "), 300)
	assert.Equal(t, first, second)
}

func TestChunkHandlesTrailingTextWithoutTerminal(t *testing.T) {
	chunks := Chunk("A full sentence. a trailing fragment without punctuation", 1500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A full sentence. a trailing fragment without punctuation", chunks[0])
}
