package cryptox

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNormalizePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{name: "short", password: "hunter2", want: "hunter2"},
		{name: "exactly 72", password: strings.Repeat("a", 72), want: strings.Repeat("a", 72)},
		{name: "over 72", password: strings.Repeat("a", 80), want: strings.Repeat("a", 72)},
		// 71 ASCII bytes + a 2-byte rune straddling the limit.
		{name: "cut two-byte rune", password: strings.Repeat("a", 71) + "é" + "tail", want: strings.Repeat("a", 71)},
		// 70 ASCII bytes + a 4-byte rune spanning bytes 71..74.
		{name: "cut four-byte rune", password: strings.Repeat("a", 70) + "😀", want: strings.Repeat("a", 70)},
		// 70 ASCII bytes + a 2-byte rune ending exactly at the limit.
		{name: "rune ends at limit", password: strings.Repeat("a", 70) + "é" + "x", want: strings.Repeat("a", 70) + "é"},
		{name: "empty", password: "", want: ""},
		{name: "invalid bytes inside prefix", password: strings.Repeat("a", 70) + "\xff\xfe" + "tail", want: strings.Repeat("a", 70)},
		{name: "invalid byte in short password", password: "ab\xffc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePassword(tt.password)
			assert.Equal(t, tt.want, string(got))
			assert.LessOrEqual(t, len(got), 72)
			assert.True(t, utf8.Valid(got))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
	assert.False(t, VerifyPassword("not-a-hash", "correct horse"))
}

func TestVerifyPassword_LongPasswordsShareTheirPrefix(t *testing.T) {
	prefix := strings.Repeat("p", 72)
	hash, err := HashPassword(prefix+"-first-suffix", bcrypt.MinCost)
	require.NoError(t, err)

	// Only the first 72 bytes are significant.
	assert.True(t, VerifyPassword(hash, prefix+"-another-suffix"))
	assert.True(t, VerifyPassword(hash, prefix))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashToken("abc"))
}
