package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/techfourbate/MindSpero-V1/internal/models"
	"github.com/techfourbate/MindSpero-V1/internal/services"
)

var (
	processorInstance *services.ProcessorFunction
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ProcessUploadedNote", processUploadedNote)
}

// main is required by the Go Functions Framework.
func main() {}

// gcsEvent is the payload of a GCS object-finalize event.
type gcsEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// processUploadedNote starts a pipeline run when a source document lands in
// the notes bucket. Uploads are keyed as {userId}/{fileName}, so the caller
// identity comes from the object path.
func processUploadedNote(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		processorInstance, initErr = services.NewProcessor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var event gcsEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	userID, _, ok := strings.Cut(event.Name, "/")
	if !ok || userID == "" {
		slog.Warn("Ignoring object without a user prefix.", "object", event.Name)
		return nil
	}

	req := &models.ProcessRequest{
		UserID:   userID,
		FilePath: event.Name,
		FileName: path.Base(event.Name),
	}
	if _, err := processorInstance.Process(ctx, req); err != nil {
		// The orchestrator already recorded and logged the failure.
		return err
	}
	return nil
}
