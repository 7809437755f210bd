package llm

import (
	"errors"
	"strings"
)

// ExtractJSON pulls the JSON document out of a completion. Models frequently
// wrap JSON in markdown fences or lead-in prose; everything outside the
// outermost braces is discarded. The caller still schema-validates the
// result, so this only normalizes packaging, never content.
func ExtractJSON(content string) (string, error) {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end < start {
		return "", errors.New("no JSON object found in completion")
	}

	return trimmed[start : end+1], nil
}
