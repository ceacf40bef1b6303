package envelope

import "unicode/utf8"

// charsPerToken is the heuristic cost proxy for serialized output.
const charsPerToken = 4

// SizeClass buckets a payload by estimated token cost.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

const (
	smallTokenLimit  = 500
	mediumTokenLimit = 2000
)

// EstimateTokens approximates the token cost of serialized text.
func EstimateTokens(n int) int {
	return n / charsPerToken
}

// ClassifySize buckets an estimated token count.
func ClassifySize(tokens int) SizeClass {
	switch {
	case tokens <= smallTokenLimit:
		return SizeSmall
	case tokens <= mediumTokenLimit:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// TruncateText cuts text down to roughly maxTokens worth of characters.
// Text already within budget comes back unchanged.
func TruncateText(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return text, false
	}
	limit := maxTokens * charsPerToken
	if len(text) <= limit {
		return text, false
	}
	if limit <= len(truncationNotice) {
		return trimToRuneBoundary(text, limit), true
	}
	return trimToRuneBoundary(text, limit-len(truncationNotice)) + truncationNotice, true
}

// trimToRuneBoundary cuts text at n bytes, backing up so a multi-byte rune
// is never split.
func trimToRuneBoundary(text string, n int) string {
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

const truncationNotice = "\n... [truncated]"
