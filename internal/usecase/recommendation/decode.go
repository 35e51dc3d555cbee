package recommendation

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in model output")

// decodeModelJSON decodes text strictly first and falls back to the first
// balanced JSON object embedded in it.
func decodeModelJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	strictErr := json.Unmarshal([]byte(text), v)
	if strictErr == nil {
		return nil
	}

	obj, ok := extractObject(text)
	if !ok {
		return errors.Join(strictErr, errNoJSONObject)
	}
	return json.Unmarshal([]byte(obj), v) //nolint:wrapcheck // caller wraps
}

// extractObject returns the first balanced {...} span in s. Braces inside
// JSON strings are ignored.
func extractObject(s string) (string, bool) {
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
