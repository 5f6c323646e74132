package pipeline

import (
	"bytes"
	"fmt"
	"strings"
)

// Page geometry for the rendered output. The canvas is a fixed 600x800
// units with Courier 12pt body text; Courier is monospaced with a glyph
// advance of 600/1000 em, so every character is charWidth units wide.
const (
	pageWidth    = 600
	pageHeight   = 800
	pageMargin   = 50
	fontSize     = 12
	lineHeight   = 18
	maxLineWidth = 500

	charWidth = fontSize * 0.6
)

// RenderPDF lays text out into a paginated PDF and returns the document
// bytes. Deterministic: same text always yields the same bytes. Words are
// wrapped greedily at maxLineWidth; a new page starts when the next baseline
// would fall below the bottom margin.
func RenderPDF(text string) []byte {
	lines := wrapLines(text)
	pages := paginate(lines)
	if len(pages) == 0 {
		pages = [][]string{nil}
	}
	return buildPDF(pages)
}

// wrapLines greedily packs words into lines no wider than maxLineWidth.
// A single word wider than the limit gets a line of its own.
func wrapLines(text string) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		testLen := line.Len() + len(word)
		if line.Len() > 0 {
			testLen++
		}
		if float64(testLen)*charWidth > maxLineWidth && line.Len() > 0 {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// paginate splits lines into pages. The first baseline sits at
// pageHeight-pageMargin and each line drops lineHeight; the page is full
// when the next baseline would land below pageMargin+lineHeight.
func paginate(lines []string) [][]string {
	var pages [][]string
	var page []string
	y := pageHeight - pageMargin
	for _, line := range lines {
		if y < pageMargin+lineHeight {
			pages = append(pages, page)
			page = nil
			y = pageHeight - pageMargin
		}
		page = append(page, line)
		y -= lineHeight
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages
}

// buildPDF emits the document: catalog, page tree, one Courier font object,
// then a page object and content stream per page, followed by the xref
// table and trailer. Object layout: 1 catalog, 2 pages, 3 font, then
// (4+2k, 5+2k) for page k's page object and content stream.
func buildPDF(pages [][]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	objCount := 3 + 2*len(pages)
	offsets := make([]int, objCount+1)

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")

	var kids strings.Builder
	for k := range pages {
		if k > 0 {
			kids.WriteByte(' ')
		}
		fmt.Fprintf(&kids, "%d 0 R", 4+2*k)
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), len(pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>")

	for k, lines := range pages {
		pageNum := 4 + 2*k
		contentNum := pageNum + 1
		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, contentNum))

		stream := contentStream(lines)
		writeObj(contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= objCount; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objCount+1, xrefOffset)
	return buf.Bytes()
}

// contentStream draws the page's lines top-down from the first baseline,
// using the text leading operator to advance between lines.
func contentStream(lines []string) string {
	var sb strings.Builder
	sb.WriteString("BT\n")
	fmt.Fprintf(&sb, "/F1 %d Tf\n", fontSize)
	fmt.Fprintf(&sb, "%d TL\n", lineHeight)
	fmt.Fprintf(&sb, "%d %d Td\n", pageMargin, pageHeight-pageMargin)
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("T*\n")
		}
		fmt.Fprintf(&sb, "(%s) Tj\n", escapePDFString(line))
	}
	sb.WriteString("ET\n")
	return sb.String()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
