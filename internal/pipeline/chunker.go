package pipeline

import "strings"

// Chunk splits text into ordered segments of at most maxChars characters
// without breaking sentences. A sentence ends at '.', '!' or '?' followed by
// whitespace. A single sentence longer than maxChars is kept whole as its own
// oversized chunk. Empty or whitespace-only input yields no chunks.
func Chunk(text string, maxChars int) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		// +1 for the joining space when the buffer is non-empty.
		next := current.Len() + len(sentence)
		if current.Len() > 0 {
			next++
		}
		if next > maxChars && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitSentences cuts text at terminal punctuation followed by whitespace.
// Returned sentences are trimmed and never empty.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		// Consume a run of terminal punctuation ("?!", "...").
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && !isSpace(runes[j+1]) {
			i = j
			continue
		}
		if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
			sentences = append(sentences, s)
		}
		i = j
		start = j + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
