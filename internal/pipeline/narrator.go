package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// NarratorSystemPrompt asks for a spoken-word rewrite. No headers or bullet
// points come back, just speech flow, so the script can go straight to TTS.
const NarratorSystemPrompt = "You are an engaging AI Audio Tutor. Convert the provided academic text into a lively, spoken-word script. Use rhetorical questions, analogies, and direct address (\"Now, let's look at...\") to keep the student listening. Do not use headers or bullet points, just natural speech flow."

// Narrator rewrites simplified text into a narration script. Same
// chunk-and-reassemble discipline as the Simplifier, but there is no
// cohesion pass: the script is consumed by speech synthesis, not read.
type Narrator struct {
	completer   Completer
	chunkSize   int
	concurrency int
}

func NewNarrator(completer Completer, chunkSize, concurrency int) *Narrator {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Narrator{completer: completer, chunkSize: chunkSize, concurrency: concurrency}
}

// ToScript converts text into a spoken tutor script.
func (n *Narrator) ToScript(ctx context.Context, text string) (string, error) {
	chunks := Chunk(text, n.chunkSize)
	if len(chunks) == 0 {
		return "", E(KindEmptyContent, "no text to narrate", nil)
	}
	slog.Info("Generating narration script.", "chunkCount", len(chunks))

	parts, err := completeChunks(ctx, n.completer, NarratorSystemPrompt, "Convert this text into a spoken tutor script:\n\n%s", chunks, n.concurrency)
	if err != nil {
		return "", fmt.Errorf("narration script generation failed: %w", err)
	}
	return strings.Join(parts, " "), nil
}
