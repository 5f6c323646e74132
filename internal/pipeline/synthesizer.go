package pipeline

import (
	"bytes"
	"context"
	"log/slog"
)

// SpeechClient is the speech-synthesis capability. Implementations bound the
// accepted input length; the Synthesizer chunks below that ceiling.
type SpeechClient interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// placeholderAudio is a minimal non-empty MP3 stand-in (an ID3 tag header)
// returned when every synthesis chunk fails, so a run still produces a file.
var placeholderAudio = []byte("ID3")

// Synthesizer converts narration text into one audio buffer. Synthesis is
// best-effort by policy: a failed chunk is logged and dropped, never
// retried, and never fails the run. This leniency is deliberate and local
// to audio; text simplification failures stay fatal.
type Synthesizer struct {
	speech    SpeechClient
	chunkSize int
}

// NewSynthesizer creates a Synthesizer. chunkSize must stay under the
// provider's input character ceiling.
func NewSynthesizer(speech SpeechClient, chunkSize int) *Synthesizer {
	if chunkSize <= 0 {
		chunkSize = 2900
	}
	return &Synthesizer{speech: speech, chunkSize: chunkSize}
}

// Synthesize returns concatenated audio for text, in chunk order. If no
// chunk succeeds the placeholder buffer is returned instead of an error.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) []byte {
	chunks := Chunk(text, s.chunkSize)
	slog.Info("Starting speech synthesis.", "chunkCount", len(chunks))

	var out bytes.Buffer
	var succeeded int
	for i, chunk := range chunks {
		audio, err := s.speech.Speak(ctx, chunk)
		if err != nil {
			slog.Warn("Speech synthesis failed for chunk, skipping.", "chunk", i, "error", err)
			continue
		}
		out.Write(audio)
		succeeded++
	}

	if succeeded == 0 {
		slog.Warn("All synthesis chunks failed, returning placeholder audio.", "chunkCount", len(chunks))
		return placeholderAudio
	}
	slog.Info("Speech synthesis complete.", "succeeded", succeeded, "total", len(chunks))
	return out.Bytes()
}
