package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "testo", StripCodeFences("```\ntesto\n```"))
	assert.Equal(t, "testo", StripCodeFences("  testo "))
}

func TestSniffMimeHTTP(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/png", SniffMimeHTTP([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP(nil))
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/webp", PickMIME("image/webp", []byte{0xFF, 0xD8}))
	assert.Equal(t, "image/jpeg", PickMIME("application/octet-stream", []byte{0xFF, 0xD8}))
	assert.Equal(t, "image/jpeg", PickMIME("", []byte{0xFF, 0xD8}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
	assert.Equal(t, "pi…", Truncate("più", 3))

	long := strings.Repeat("è", 3000)
	cut := Truncate(long, 3900)
	assert.LessOrEqual(t, len(cut), 3900+len("…"))
	assert.True(t, utf8.ValidString(cut))
}
