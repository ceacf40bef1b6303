package envelope

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, 0, EstimateTokens(3))
	require.Equal(t, 1, EstimateTokens(4))
	require.Equal(t, 250, EstimateTokens(1000))
}

func TestClassifySize(t *testing.T) {
	require.Equal(t, SizeSmall, ClassifySize(0))
	require.Equal(t, SizeSmall, ClassifySize(500))
	require.Equal(t, SizeMedium, ClassifySize(501))
	require.Equal(t, SizeMedium, ClassifySize(2000))
	require.Equal(t, SizeLarge, ClassifySize(2001))
}

func TestTruncateText_ShortTextUnchanged(t *testing.T) {
	text := "short payload"
	got, truncated := TruncateText(text, 100)
	require.False(t, truncated)
	require.Equal(t, text, got)
}

func TestTruncateText_LongTextShrinks(t *testing.T) {
	maxTokens := 10
	text := strings.Repeat("a", maxTokens*4+1)
	got, truncated := TruncateText(text, maxTokens)
	require.True(t, truncated)
	require.Less(t, len(got), len(text))
}

func TestTruncateText_BoundaryExactBudget(t *testing.T) {
	maxTokens := 10
	text := strings.Repeat("a", maxTokens*4)
	got, truncated := TruncateText(text, maxTokens)
	require.False(t, truncated)
	require.Equal(t, text, got)
}

func TestTruncateText_TinyBudget(t *testing.T) {
	got, truncated := TruncateText(strings.Repeat("a", 100), 1)
	require.True(t, truncated)
	require.Less(t, len(got), 100)
}

func TestTruncateText_NeverSplitsRunes(t *testing.T) {
	// Three-byte runes make most byte offsets fall inside a sequence, so a
	// naive byte-index cut would produce invalid UTF-8.
	text := strings.Repeat("€", 300)
	for _, maxTokens := range []int{1, 2, 5, 10, 25} {
		got, truncated := TruncateText(text, maxTokens)
		require.True(t, truncated)
		require.True(t, utf8.ValidString(got), "maxTokens=%d produced invalid UTF-8", maxTokens)
		require.Less(t, len(got), len(text))
	}
}

func TestTruncateText_NoBudgetMeansNoTruncation(t *testing.T) {
	text := strings.Repeat("a", 100)
	got, truncated := TruncateText(text, 0)
	require.False(t, truncated)
	require.Equal(t, text, got)
}
