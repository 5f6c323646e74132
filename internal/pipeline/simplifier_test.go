package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCompleter echoes a marker derived from the user prompt and keeps
// every call for inspection.
type recordingCompleter struct {
	mu    sync.Mutex
	calls []recordedCall
	fn    func(system, user string) (string, error)
}

type recordedCall struct {
	system string
	user   string
}

func (r *recordingCompleter) Complete(_ context.Context, system, user string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, recordedCall{system: system, user: user})
	r.mu.Unlock()
	if r.fn != nil {
		return r.fn(system, user)
	}
	return "echo:" + user, nil
}

func (r *recordingCompleter) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// twoChunkInput builds ~3000 characters of sentences that pack into exactly
// two 1500-character chunks.
func twoChunkInput(t *testing.T) string {
	t.Helper()
	sentence := strings.Repeat("a", 99) + "."
	parts := make([]string, 28)
	for i := range parts {
		parts[i] = sentence
	}
	text := strings.Join(parts, " ")
	require.Len(t, Chunk(text, 1500), 2)
	return text
}

func TestSimplifyIssuesOneCallPerChunkPlusCohesion(t *testing.T) {
	completer := &recordingCompleter{}
	s := NewSimplifier(completer, 1500, 4)

	_, err := s.Simplify(context.Background(), twoChunkInput(t))
	require.NoError(t, err)
	// 2 chunk calls + 1 cohesion call.
	assert.Equal(t, 3, completer.callCount())

	last := completer.calls[len(completer.calls)-1]
	assert.Contains(t, last.user, "cohesive")
	for _, c := range completer.calls {
		assert.Equal(t, SimplifierSystemPrompt, c.system)
	}
}

func TestSimplifyPreservesChunkOrderUnderConcurrency(t *testing.T) {
	// Delay the first chunk so the second finishes first; output order must
	// still follow chunk index.
	completer := &recordingCompleter{}
	completer.fn = func(_, user string) (string, error) {
		if strings.Contains(user, "FIRST") {
			time.Sleep(20 * time.Millisecond)
			return "one", nil
		}
		if strings.Contains(user, "SECOND") {
			return "two", nil
		}
		// Cohesion pass: return its input so the test can see the join order.
		return user, nil
	}

	first := "FIRST " + strings.Repeat("a", 90) + "."
	second := "SECOND " + strings.Repeat("b", 90) + "."
	s := NewSimplifier(completer, 100, 4)

	out, err := s.Simplify(context.Background(), first+" "+second)
	require.NoError(t, err)
	assert.Contains(t, out, "one\n\ntwo")
}

func TestSimplifyChunkFailureAbortsRun(t *testing.T) {
	failure := errors.New("model unavailable")
	completer := &recordingCompleter{}
	completer.fn = func(_, user string) (string, error) {
		if strings.Contains(user, "bbbb") {
			return "", failure
		}
		return "fine", nil
	}

	first := strings.Repeat("a", 90) + "."
	second := strings.Repeat("b", 90) + "."
	s := NewSimplifier(completer, 100, 1)

	_, err := s.Simplify(context.Background(), first+" "+second)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	// The cohesion pass never ran.
	assert.Equal(t, 2, completer.callCount())
}

func TestSimplifyEmptyInput(t *testing.T) {
	s := NewSimplifier(&recordingCompleter{}, 1500, 4)
	_, err := s.Simplify(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, KindEmptyContent, KindOf(err))
}
