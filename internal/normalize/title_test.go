package normalize

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTitleRelevance_CodeWins(t *testing.T) {
	n := New(DefaultRules())

	// Code 10026 is an agency-head code even with low-tier text.
	assert.InDelta(t, 1.0, n.TitleRelevance("10026", "clerk"), 0.001)
}

func TestTitleRelevance_KeywordTiers(t *testing.T) {
	n := New(DefaultRules())

	tests := []struct {
		text string
		want float64
	}{
		{"Commissioner", 1.0},
		{"Executive Director", 1.0},
		{"Deputy Commissioner", 0.6},
		{"First Deputy Commissioner", 0.6},
		{"Staff Analyst", 0.2},
		{"Community Liaison", 0.5},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, n.TitleRelevance("", tc.text), 0.001, tc.text)
	}
}

func TestTitleRelevance_UnknownCodeFallsToText(t *testing.T) {
	n := New(DefaultRules())

	assert.InDelta(t, 1.0, n.TitleRelevance("00000", "Commissioner"), 0.001)
}

func TestTitleRelevance_EmptyInputs(t *testing.T) {
	n := New(DefaultRules())

	assert.InDelta(t, 0.5, n.TitleRelevance("", ""), 0.001)
}
