package llmjson

import (
	"encoding/json"
	"strings"
)

// Strip removes an optional markdown code fence from a model response so the
// remainder can be parsed as strict JSON.
func Strip(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 8 {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// Decode strips fencing and unmarshals into out.
func Decode(raw string, out any) error {
	return json.Unmarshal([]byte(Strip(raw)), out)
}
