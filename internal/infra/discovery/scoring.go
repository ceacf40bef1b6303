package discovery

import (
	"strings"

	"mcpbridge/internal/domain"
)

// scoreTool rates how well a tool matches a task description. Name tokens
// (split on underscores and dashes, longer than 2 characters) found in the
// task text score 2 each; description words longer than 3 characters score
// 1 each. Confidence is the score scaled by 10 and clamped to 1.0.
func scoreTool(tool domain.Tool, task string) float64 {
	task = strings.ToLower(task)
	score := 0

	for _, token := range splitName(tool.Name) {
		if len(token) > 2 && strings.Contains(task, token) {
			score += 2
		}
	}
	for _, word := range strings.Fields(strings.ToLower(tool.Description)) {
		if len(word) > 3 && strings.Contains(task, word) {
			score++
		}
	}

	confidence := float64(score) / 10
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func splitName(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '_' || r == '-'
	})
}

// matchesQuery reports whether a tool matches a plain-text search query by
// case-insensitive substring on its name or description.
func matchesQuery(tool domain.Tool, query string) bool {
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(tool.Name), needle) ||
		strings.Contains(strings.ToLower(tool.Description), needle)
}
