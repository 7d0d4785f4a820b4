package groupname

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "Corp Vanguard", "Corp Vanguard"},
		{"diacritics folded", "Sécurité Première", "Securite Premiere"},
		{"illegal chars dropped", "Ore & Gas [Holding]!", "Ore Gas Holding"},
		{"whitespace collapsed", "Deep   Space\tMining", "Deep Space Mining"},
		{"leading space trimmed", "  Frontier", "Frontier"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeClampsLength(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := Sanitize(long)
	assert.Len(t, got, 64)
}

func TestSanitizeIsIdempotent(t *testing.T) {
	in := "Sécurité  & Co"
	once := Sanitize(in)
	assert.Equal(t, once, Sanitize(once))
}

func TestReplaceSpaces(t *testing.T) {
	assert.Equal(t, "Deep_Space_Mining", ReplaceSpaces("Deep  Space Mining", "_"))
	assert.Equal(t, "DeepSpaceMining", ReplaceSpaces("Deep Space Mining", ""))
	assert.Equal(t, "Solo", ReplaceSpaces("Solo", "_"))
}
