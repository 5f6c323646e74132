package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relaxedConf() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

func TestRenderPDFProducesValidSinglePage(t *testing.T) {
	out := RenderPDF("A short simplified summary of the document.")
	require.NotEmpty(t, out)

	require.NoError(t, api.Validate(bytes.NewReader(out), relaxedConf()))
	count, err := api.PageCount(bytes.NewReader(out), relaxedConf())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRenderPDFPaginatesLongText(t *testing.T) {
	// Well past one page's capacity of lines.
	text := strings.Repeat("Every cell membrane controls what enters and leaves the cell. ", 200)
	out := RenderPDF(text)

	require.NoError(t, api.Validate(bytes.NewReader(out), relaxedConf()))
	count, err := api.PageCount(bytes.NewReader(out), relaxedConf())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestRenderPDFIsDeterministic(t *testing.T) {
	text := "Determinism matters. The same text must produce identical bytes."
	assert.Equal(t, RenderPDF(text), RenderPDF(text))
}

func TestRenderPDFEmptyTextStillYieldsADocument(t *testing.T) {
	out := RenderPDF("")
	require.NoError(t, api.Validate(bytes.NewReader(out), relaxedConf()))
	count, err := api.PageCount(bytes.NewReader(out), relaxedConf())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWrapLinesRespectsWidthLimit(t *testing.T) {
	text := strings.Repeat("photosynthesis chlorophyll respiration ", 50)
	for _, line := range wrapLines(text) {
		assert.LessOrEqual(t, float64(len(line))*charWidth, float64(maxLineWidth), "line %q too wide", line)
	}
}

func TestWrapLinesKeepsOversizedWordWhole(t *testing.T) {
	giant := strings.Repeat("x", 200)
	lines := wrapLines("small " + giant + " small")
	require.Len(t, lines, 3)
	assert.Equal(t, giant, lines[1])
}

func TestPaginateLineCapacity(t *testing.T) {
	// With an 800-unit page, 50-unit margins and 18-unit leading, 38 lines
	// fit before the baseline would drop below the bottom margin.
	lines := make([]string, 39)
	for i := range lines {
		lines[i] = "line"
	}
	pages := paginate(lines)
	require.Len(t, pages, 2)
	assert.Len(t, pages[0], 38)
	assert.Len(t, pages[1], 1)
}

func TestEscapePDFString(t *testing.T) {
	assert.Equal(t, `a \(b\) \\c`, escapePDFString(`a (b) \c`))
}
