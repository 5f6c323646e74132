package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Prompts for the two completion tasks driven by the simplifier.
const (
	SimplifierSystemPrompt = "You are an expert educator. Simplify complex academic text while preserving key concepts and information. Make it easy to understand for students."
	CohesionUserPrompt     = "Review and refine this text to ensure it's cohesive and well-structured. Fix any redundancies or transitions:\n\n%s"
)

// Simplifier rewrites academic text into simplified language, one chunk at a
// time, then runs a single cohesion pass over the joined result.
type Simplifier struct {
	completer   Completer
	chunkSize   int
	concurrency int
}

// NewSimplifier creates a Simplifier. chunkSize bounds each completion
// request; concurrency caps in-flight chunk calls (provider rate limits).
func NewSimplifier(completer Completer, chunkSize, concurrency int) *Simplifier {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Simplifier{completer: completer, chunkSize: chunkSize, concurrency: concurrency}
}

// Simplify returns the simplified rewrite of text. Any chunk or cohesion
// failure aborts the whole operation; no partial output is ever returned.
func (s *Simplifier) Simplify(ctx context.Context, text string) (string, error) {
	chunks := Chunk(text, s.chunkSize)
	if len(chunks) == 0 {
		return "", E(KindEmptyContent, "no text to simplify", nil)
	}
	slog.Info("Starting simplification.", "chunkCount", len(chunks))

	simplified, err := completeChunks(ctx, s.completer, SimplifierSystemPrompt, "Simplify this text:\n\n%s", chunks, s.concurrency)
	if err != nil {
		return "", fmt.Errorf("chunk simplification failed: %w", err)
	}

	combined := strings.Join(simplified, "\n\n")
	final, err := s.completer.Complete(ctx, SimplifierSystemPrompt, fmt.Sprintf(CohesionUserPrompt, combined))
	if err != nil {
		return "", fmt.Errorf("cohesion pass failed: %w", err)
	}
	return final, nil
}

// completeChunks issues one completion per chunk with bounded concurrency.
// Results are placed by chunk index so output order always matches input
// order, whatever order the calls finish in.
func completeChunks(ctx context.Context, completer Completer, systemPrompt, userTemplate string, chunks []string, concurrency int) ([]string, error) {
	results := make([]string, len(chunks))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, chunk := range chunks {
		eg.Go(func() error {
			out, err := completer.Complete(gctx, systemPrompt, fmt.Sprintf(userTemplate, chunk))
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
