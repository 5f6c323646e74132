package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/techfourbate/MindSpero-V1/internal/models"
)

// TextExtractor turns raw document bytes into plain text, dispatching on the
// file name's extension.
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// BlobStore reads source documents and persists generated artifacts.
type BlobStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path string, data []byte, contentType string) error
}

// MetadataStore answers entitlement queries and records run outcomes.
type MetadataStore interface {
	HasActiveEntitlement(ctx context.Context, userID string, now time.Time) (bool, error)
	InsertResult(ctx context.Context, record *models.NoteRecord) error
}

// Config tunes one Orchestrator. Zero values pick the defaults below.
type Config struct {
	// NarrationEnabled switches the tutor-script rewrite on. When off, audio
	// is synthesized directly from the simplified text.
	NarrationEnabled bool
	// RunTimeout bounds a whole run; retry chains across many chunks can
	// otherwise accumulate unbounded latency.
	RunTimeout time.Duration
	// ChunkSize bounds each completion request.
	ChunkSize int
	// SpeechChunkSize must stay under the speech provider's input ceiling.
	SpeechChunkSize int
	// Concurrency caps in-flight completion calls per stage.
	Concurrency int
}

const (
	defaultRunTimeout = 10 * time.Minute
	// textPreviewLimit bounds the extracted/simplified text stored on the
	// outcome record.
	textPreviewLimit = 5000
)

// Orchestrator sequences one processing run: entitlement check, download,
// extraction, simplification, optional narration, concurrent PDF rendering
// and speech synthesis, then artifact upload and the outcome record. It owns
// every intermediate value for the duration of a run; nothing is shared
// between concurrent runs.
type Orchestrator struct {
	extractor   TextExtractor
	blobs       BlobStore
	metadata    MetadataStore
	simplifier  *Simplifier
	narrator    *Narrator
	synthesizer *Synthesizer
	config      Config
}

// NewOrchestrator wires the pipeline stages around the given collaborators.
func NewOrchestrator(extractor TextExtractor, blobs BlobStore, metadata MetadataStore, completer Completer, speech SpeechClient, config Config) *Orchestrator {
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaultRunTimeout
	}
	return &Orchestrator{
		extractor:   extractor,
		blobs:       blobs,
		metadata:    metadata,
		simplifier:  NewSimplifier(completer, config.ChunkSize, config.Concurrency),
		narrator:    NewNarrator(completer, config.ChunkSize, config.Concurrency),
		synthesizer: NewSynthesizer(speech, config.SpeechChunkSize),
		config:      config,
	}
}

// Run executes the pipeline for one request. The returned error is always a
// classified *Error on failure.
func (o *Orchestrator) Run(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error) {
	runID := uuid.New().String()
	logCtx := slog.With("runId", runID, "userId", req.UserID, "file", req.FileName)
	logCtx.Info("Starting processing run.")

	ctx, cancel := context.WithTimeout(ctx, o.config.RunTimeout)
	defer cancel()

	// The access check must short-circuit before any paid API call.
	ok, err := o.metadata.HasActiveEntitlement(ctx, req.UserID, time.Now())
	if err != nil {
		return nil, E(KindStorageFailure, "entitlement lookup failed", err)
	}
	if !ok {
		logCtx.Info("Access denied, no active entitlement window.")
		return nil, E(KindAccessDenied, "subscription expired", nil)
	}

	resp, runErr := o.process(ctx, logCtx, req)
	if runErr != nil {
		o.recordFailure(logCtx, req, runErr)
		return nil, runErr
	}
	logCtx.Info("Processing run completed.", "pdfPath", resp.PdfPath, "audioPath", resp.AudioPath)
	return resp, nil
}

func (o *Orchestrator) process(ctx context.Context, logCtx *slog.Logger, req *models.ProcessRequest) (*models.ProcessResponse, error) {
	data, err := o.blobs.Download(ctx, req.FilePath)
	if err != nil {
		return nil, E(KindNotFound, "source document not found", err)
	}

	extracted, err := o.extractor.Extract(ctx, req.FileName, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(extracted) == "" {
		return nil, E(KindEmptyContent, "no text found in file", nil)
	}
	logCtx.Info("Text extracted.", "chars", len(extracted))

	simplified, err := o.simplifier.Simplify(ctx, extracted)
	if err != nil {
		return nil, classifyRunError(ctx, err)
	}
	logCtx.Info("Simplification complete.", "chars", len(simplified))

	narration := simplified
	if o.config.NarrationEnabled {
		narration, err = o.narrator.ToScript(ctx, simplified)
		if err != nil {
			return nil, classifyRunError(ctx, err)
		}
		logCtx.Info("Narration script ready.", "chars", len(narration))
	}

	// The two artifacts depend only on the upstream text, never on each
	// other, so they are generated concurrently.
	var pdfBytes, audioBytes []byte
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		pdfBytes = RenderPDF(simplified)
		return nil
	})
	eg.Go(func() error {
		audioBytes = o.synthesizer.Synthesize(gctx, narration)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, classifyRunError(ctx, err)
	}

	timestamp := time.Now().UnixMilli()
	pdfPath := fmt.Sprintf("%s/output-%d.pdf", req.UserID, timestamp)
	audioPath := fmt.Sprintf("%s/output-%d.mp3", req.UserID, timestamp)

	if err := o.blobs.Upload(ctx, pdfPath, pdfBytes, "application/pdf"); err != nil {
		return nil, classifyStorageError(ctx, "failed to upload PDF artifact", err)
	}
	if err := o.blobs.Upload(ctx, audioPath, audioBytes, "audio/mpeg"); err != nil {
		return nil, classifyStorageError(ctx, "failed to upload audio artifact", err)
	}

	record := &models.NoteRecord{
		UserID:         req.UserID,
		OriginalPath:   req.FilePath,
		ExtractedText:  truncate(extracted, textPreviewLimit),
		SimplifiedText: truncate(simplified, textPreviewLimit),
		OutputPdfPath:  pdfPath,
		AudioPath:      audioPath,
		Status:         "completed",
		CreatedAt:      time.Now(),
	}
	if err := o.metadata.InsertResult(ctx, record); err != nil {
		// Both blobs are already uploaded; the orphans are content-addressed
		// by timestamp and can be garbage-collected or the run retried.
		return nil, classifyStorageError(ctx, "failed to write outcome record", err)
	}

	return &models.ProcessResponse{
		Status:                "completed",
		PdfPath:               pdfPath,
		AudioPath:             audioPath,
		SimplifiedTextPreview: truncate(simplified, textPreviewLimit),
	}, nil
}

// recordFailure writes a failed outcome record, best effort. Access denials
// never reach here, so every failure record corresponds to a run that was
// actually attempted.
func (o *Orchestrator) recordFailure(logCtx *slog.Logger, req *models.ProcessRequest, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := &models.NoteRecord{
		UserID:       req.UserID,
		OriginalPath: req.FilePath,
		Status:       "failed",
		ErrorDetails: runErr.Error(),
		CreatedAt:    time.Now(),
	}
	if err := o.metadata.InsertResult(ctx, record); err != nil {
		logCtx.Error("Failed to write failure record.", "error", err, "runError", runErr)
	}
}

// classifyStorageError reports a persistence failure, except when the run
// deadline expired mid-write: expiry is an upstream condition, not a fault
// of the stores.
func classifyStorageError(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		return E(KindUpstreamUnavailable, "run deadline exceeded", err)
	}
	return E(KindStorageFailure, msg, err)
}

// classifyRunError keeps already-classified errors and maps deadline expiry
// to upstream_unavailable, since the deadline exists to cap retry chains.
func classifyRunError(ctx context.Context, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	if ctx.Err() != nil {
		return E(KindUpstreamUnavailable, "run deadline exceeded", err)
	}
	return E(KindUpstreamUnavailable, "completion stage failed", err)
}

// truncate caps s at limit bytes without splitting a rune; the metadata
// store rejects string fields carrying invalid UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
