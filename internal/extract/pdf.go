package extract

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF extracts the plain text of a PDF document. The bytes are first run
// through a relaxed structural validation; a file that cannot be validated
// or parsed yields an empty string, which the caller treats as a document
// with no extractable text.
func PDF(_ context.Context, data []byte) (string, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), cfg); err != nil {
		slog.Warn("PDF failed relaxed validation, treating as unreadable.", "error", err)
		return "", nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("PDF parse failed, treating as unreadable.", "error", err)
		return "", nil
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		slog.Warn("PDF text extraction failed, treating as unreadable.", "error", err)
		return "", nil
	}
	var sb bytes.Buffer
	if _, err := io.Copy(&sb, textReader); err != nil {
		slog.Warn("PDF text read failed, treating as unreadable.", "error", err)
		return "", nil
	}
	return sb.String(), nil
}
