// Package extract turns uploaded document bytes into plain text. Formats are
// dispatched by file extension through a fixed registry; unknown extensions
// are rejected explicitly rather than falling through.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/techfourbate/MindSpero-V1/internal/pipeline"
)

// Func extracts plain text from one document format.
type Func func(ctx context.Context, data []byte) (string, error)

// Registry maps normalized file extensions to extractors.
type Registry struct {
	extractors map[string]Func
}

// NewRegistry returns the default registry covering PDF, Word and plain
// text uploads.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Func{
		".pdf":  PDF,
		".docx": Docx,
		".doc":  Docx,
		".txt":  Text,
	}}
}

// Extract dispatches on fileName's extension and returns the document text.
func (r *Registry) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	fn, ok := r.extractors[ext]
	if !ok {
		return "", pipeline.E(pipeline.KindUnsupportedFormat, fmt.Sprintf("unsupported file format %q", ext), nil)
	}
	text, err := fn(ctx, data)
	if err != nil {
		// Extractor errors mean the client supplied bytes that do not parse
		// as the claimed format; classify them with the other client faults.
		return "", pipeline.E(pipeline.KindEmptyContent, fmt.Sprintf("unreadable %s file", ext), err)
	}
	return text, nil
}

// Text handles plain-text uploads unchanged.
func Text(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}
