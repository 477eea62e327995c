// Package jsonx extracts JSON payloads from noisy LLM responses.
package jsonx

import (
	"encoding/json"
	"strings"
)

// CleanObject extracts the first balanced JSON object from an LLM response,
// tolerating markdown code fences and prose before or after the object.
// The second return is false when no valid object could be recovered.
func CleanObject(s string) (string, bool) {
	s = stripFences(strings.TrimSpace(s))
	obj, ok := firstObject(s)
	if !ok {
		return "", false
	}
	if !json.Valid([]byte(obj)) {
		return "", false
	}
	return obj, true
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstObject scans for the first balanced top-level object, tracking string
// literals so braces inside values do not break the balance.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
