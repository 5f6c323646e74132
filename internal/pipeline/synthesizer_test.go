package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySpeech fails for chunks matching failOn and records every input.
type flakySpeech struct {
	mu     sync.Mutex
	inputs []string
	failOn func(text string) bool
}

func (f *flakySpeech) Speak(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	if f.failOn != nil && f.failOn(text) {
		return nil, errors.New("synthesis backend unavailable")
	}
	return []byte("<" + text[:1] + ">"), nil
}

func TestSynthesizeConcatenatesChunksInOrder(t *testing.T) {
	speech := &flakySpeech{}
	s := NewSynthesizer(speech, 100)

	text := strings.Repeat("a", 90) + ". " + strings.Repeat("b", 90) + ". " + strings.Repeat("c", 90) + "."
	out := s.Synthesize(context.Background(), text)
	assert.Equal(t, []byte("<a><b><c>"), out)
	require.Len(t, speech.inputs, 3)
}

func TestSynthesizeSkipsFailedChunks(t *testing.T) {
	speech := &flakySpeech{failOn: func(text string) bool {
		return strings.HasPrefix(text, "b")
	}}
	s := NewSynthesizer(speech, 100)

	text := strings.Repeat("a", 90) + ". " + strings.Repeat("b", 90) + ". " + strings.Repeat("c", 90) + "."
	out := s.Synthesize(context.Background(), text)
	// The failed middle chunk is dropped; order of survivors is preserved.
	assert.Equal(t, []byte("<a><c>"), out)
	assert.Len(t, speech.inputs, 3)
}

func TestSynthesizeReturnsPlaceholderWhenAllChunksFail(t *testing.T) {
	speech := &flakySpeech{failOn: func(string) bool { return true }}
	s := NewSynthesizer(speech, 100)

	out := s.Synthesize(context.Background(), "This will fail. So will this.")
	assert.NotEmpty(t, out)
	assert.Equal(t, []byte("ID3"), out)
}

func TestSynthesizeRespectsChunkCeiling(t *testing.T) {
	speech := &flakySpeech{}
	s := NewSynthesizer(speech, 120)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString(strings.Repeat("w", 50) + ". ")
	}
	s.Synthesize(context.Background(), sb.String())
	require.NotEmpty(t, speech.inputs)
	for _, in := range speech.inputs {
		assert.LessOrEqual(t, len(in), 120)
	}
}
