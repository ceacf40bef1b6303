package main

import (
	"encoding/json"
	"fmt"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/envelope"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// emit wraps a payload in a success envelope and prints it.
func emit(b *envelope.Builder, data any) error {
	return writeJSON(b.Success(data))
}

// emitTruncated is emit with the truncated flag already decided.
func emitTruncated(b *envelope.Builder, data any, truncated bool) error {
	env := b.Success(data)
	if truncated {
		env.MarkTruncated()
	}
	return writeJSON(env)
}

// fail prints an error envelope and signals a non-zero exit without
// re-printing the error through cobra.
func fail(b *envelope.Builder, err error) error {
	if writeErr := writeJSON(b.Failure(err)); writeErr != nil {
		return writeErr
	}
	return exitSilent(1)
}

// truncateToolResult cuts oversized text blocks down to the requested token
// budget. Non-text content is left alone.
func truncateToolResult(result domain.ToolResult, maxTokens int) (domain.ToolResult, bool) {
	if maxTokens <= 0 {
		return result, false
	}
	truncated := false
	out := result
	out.Content = make([]domain.Content, len(result.Content))
	for i, content := range result.Content {
		if content.Kind == domain.ContentText {
			text, cut := envelope.TruncateText(content.Text, maxTokens)
			content.Text = text
			truncated = truncated || cut
		}
		out.Content[i] = content
	}
	return out, truncated
}
