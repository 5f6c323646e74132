package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// BlobStore reads source uploads from the notes bucket and writes generated
// artifacts to the outputs bucket.
type BlobStore struct {
	client        *storage.Client
	sourceBucket  string
	outputsBucket string
}

// NewBlobStore creates a BlobStore over the two buckets.
func NewBlobStore(ctx context.Context, sourceBucket, outputsBucket string) (*BlobStore, error) {
	if sourceBucket == "" || outputsBucket == "" {
		return nil, fmt.Errorf("source and outputs bucket names must be provided")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &BlobStore{client: client, sourceBucket: sourceBucket, outputsBucket: outputsBucket}, nil
}

// Download reads the full source object at path.
func (b *BlobStore) Download(ctx context.Context, path string) ([]byte, error) {
	reader, err := b.client.Bucket(b.sourceBucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", b.sourceBucket, path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", b.sourceBucket, path, err)
	}
	return data, nil
}

// Upload writes an artifact to the outputs bucket. Artifact paths carry a
// timestamp, so a precondition conflict means the object was already written
// by an identical run and is not a failure.
func (b *BlobStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	writer := b.client.Bucket(b.outputsBucket).Object(path).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to gs://%s/%s: %w", b.outputsBucket, path, err)
	}
	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			return nil
		}
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", b.outputsBucket, path, err)
	}
	return nil
}

func (b *BlobStore) Close() error {
	return b.client.Close()
}
