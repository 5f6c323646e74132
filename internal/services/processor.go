package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/techfourbate/MindSpero-V1/internal/extract"
	"github.com/techfourbate/MindSpero-V1/internal/gcp"
	"github.com/techfourbate/MindSpero-V1/internal/models"
	"github.com/techfourbate/MindSpero-V1/internal/pipeline"
	"github.com/techfourbate/MindSpero-V1/internal/speech"
)

// ProcessorConfig holds all configuration for the note-processor service.
type ProcessorConfig struct {
	ProjectID        string
	VertexAIRegion   string
	SourceBucket     string
	OutputsBucket    string
	SpeechProvider   string
	NarrationEnabled bool
	RunTimeout       time.Duration
	ChunkSize        int
	SpeechChunkSize  int
	Concurrency      int
}

// ProcessorFunction holds the dependencies for the processing pipeline.
type ProcessorFunction struct {
	orchestrator *pipeline.Orchestrator
	vertexClient *gcp.VertexClient
	blobStore    *gcp.BlobStore
	metadata     *gcp.MetadataStore
	config       ProcessorConfig
}

// loadConfig loads and validates all necessary environment variables.
func loadConfig() (*ProcessorConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	sourceBucket := gcp.GetEnv("NOTES_BUCKET", "")
	outputsBucket := gcp.GetEnv("OUTPUTS_BUCKET", "")
	if sourceBucket == "" || outputsBucket == "" {
		return nil, fmt.Errorf("NOTES_BUCKET and OUTPUTS_BUCKET must be set")
	}

	provider := strings.ToLower(gcp.GetEnv("SPEECH_PROVIDER", "polly"))
	speechChunkSize := envInt("SPEECH_CHUNK_SIZE", 0)
	if speechChunkSize <= 0 {
		switch provider {
		case "openai":
			speechChunkSize = 4000
		default:
			speechChunkSize = speech.PollyMaxChars - 100
		}
	}

	return &ProcessorConfig{
		ProjectID:        projectID,
		VertexAIRegion:   gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		SourceBucket:     sourceBucket,
		OutputsBucket:    outputsBucket,
		SpeechProvider:   provider,
		NarrationEnabled: envBool("NARRATION_ENABLED", true),
		RunTimeout:       envDuration("RUN_TIMEOUT", 10*time.Minute),
		ChunkSize:        envInt("CHUNK_SIZE", 1500),
		SpeechChunkSize:  speechChunkSize,
		Concurrency:      envInt("CHUNK_CONCURRENCY", 4),
	}, nil
}

// NewProcessor creates a new ProcessorFunction instance with real
// collaborators wired in from the environment.
func NewProcessor(ctx context.Context) (*ProcessorFunction, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	metadata, err := gcp.NewMetadataStore(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata store: %w", err)
	}
	blobStore, err := gcp.NewBlobStore(ctx, config.SourceBucket, config.OutputsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}
	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	speechClient, err := newSpeechClient(config.SpeechProvider)
	if err != nil {
		return nil, err
	}

	orchestrator := pipeline.NewOrchestrator(
		extract.NewRegistry(),
		blobStore,
		metadata,
		pipeline.NewRetryingCompleter(vertexClient),
		speechClient,
		pipeline.Config{
			NarrationEnabled: config.NarrationEnabled,
			RunTimeout:       config.RunTimeout,
			ChunkSize:        config.ChunkSize,
			SpeechChunkSize:  config.SpeechChunkSize,
			Concurrency:      config.Concurrency,
		},
	)

	return &ProcessorFunction{
		orchestrator: orchestrator,
		vertexClient: vertexClient,
		blobStore:    blobStore,
		metadata:     metadata,
		config:       *config,
	}, nil
}

func newSpeechClient(provider string) (pipeline.SpeechClient, error) {
	switch provider {
	case "polly":
		return speech.NewPollyClient(speech.PollyConfig{
			Region:  gcp.GetEnv("POLLY_REGION", gcp.GetEnv("AWS_REGION", "")),
			VoiceID: gcp.GetEnv("POLLY_VOICE", ""),
			Engine:  gcp.GetEnv("POLLY_ENGINE", ""),
		}), nil
	case "openai":
		return speech.NewOpenAIClient(speech.OpenAIConfig{
			APIKey: gcp.GetEnv("OPENAI_API_KEY", ""),
			Model:  gcp.GetEnv("OPENAI_TTS_MODEL", ""),
			Voice:  gcp.GetEnv("OPENAI_TTS_VOICE", ""),
		})
	default:
		return nil, fmt.Errorf("unknown SPEECH_PROVIDER %q (expected polly or openai)", provider)
	}
}

// Process validates the request and runs the pipeline.
func (f *ProcessorFunction) Process(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error) {
	if req.UserID == "" || req.FilePath == "" || req.FileName == "" {
		return nil, pipeline.E(pipeline.KindNotFound, "userId, filePath and fileName are required", nil)
	}
	return f.orchestrator.Run(ctx, req)
}

// Close releases the underlying clients.
func (f *ProcessorFunction) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{f.vertexClient, f.blobStore, f.metadata} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func envInt(key string, fallback int) int {
	if v := gcp.GetEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := gcp.GetEnv(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := gcp.GetEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
