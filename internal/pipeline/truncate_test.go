package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUnderLimitIsUnchanged(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 5000))
}

func TestTruncateNeverSplitsARune(t *testing.T) {
	// A two-byte rune straddling the limit must be dropped whole, not cut
	// into a dangling lead byte.
	s := strings.Repeat("a", 4999) + "é" + strings.Repeat("b", 50)
	out := truncate(s, 5000)

	assert.True(t, utf8.ValidString(out))
	assert.Len(t, out, 4999)
	assert.True(t, strings.HasSuffix(out, "a"))
}

func TestTruncateKeepsRuneEndingExactlyAtLimit(t *testing.T) {
	s := strings.Repeat("a", 4998) + "é" + strings.Repeat("b", 50)
	out := truncate(s, 5000)

	assert.True(t, utf8.ValidString(out))
	assert.Len(t, out, 5000)
	assert.True(t, strings.HasSuffix(out, "é"))
}

func TestTruncateAllMultibyte(t *testing.T) {
	out := truncate(strings.Repeat("é", 10), 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "éé", out)
}
