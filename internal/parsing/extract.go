// Package parsing turns free-form LLM text into typed lists of strings.
// It never calls a model itself; every function is pure and idempotent.
package parsing

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// minEntryLen is the shortest trimmed entry worth keeping. Shorter strings
// are almost always markup fragments ("[", "1.", "``") rather than skills.
const minEntryLen = 3

// arraySchema validates that a candidate JSON fragment is an array before
// any entries are trusted. LLMs occasionally emit objects or bare strings
// where an array was requested.
var arraySchema = gojsonschema.NewStringLoader(`{"type": "array"}`)

// ExtractList extracts a list of strings (skills, course names, keywords)
// from free-form model output. Strategies are tried in order; the first
// that yields entries wins:
//
//  1. The first balanced JSON array in the text, keeping string entries
//     whose trimmed length is at least 3.
//  2. Line-by-line fallback, stripping bullets, numbering, and quoting.
//
// On total failure an empty list is returned; callers decide whether to
// retry with a simpler prompt or surface an error.
func ExtractList(text string) []string {
	if items := fromJSONArray(text); len(items) > 0 {
		return items
	}
	return fromLines(text)
}

// fromJSONArray locates the first balanced [...] fragment and parses it.
func fromJSONArray(text string) []string {
	fragment := firstBalancedArray(text)
	if fragment == "" {
		return nil
	}

	result, err := gojsonschema.Validate(arraySchema, gojsonschema.NewStringLoader(fragment))
	if err != nil || !result.Valid() {
		return nil
	}

	var raw []any
	if err := json.Unmarshal([]byte(fragment), &raw); err != nil {
		return nil
	}

	var items []string
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); len(s) >= minEntryLen {
			items = append(items, s)
		}
	}
	return items
}

// firstBalancedArray returns the first substring that opens with '[' and
// closes at bracket depth zero, honoring JSON string literals so brackets
// inside quoted entries do not unbalance the scan.
func firstBalancedArray(text string) string {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// structural tokens that mark a line as markup rather than content.
var structuralPrefixes = []string{"[", "]", "#", "```"}

// fromLines is the fallback strategy: one entry per line, with leading
// bullet markers, numbering, and quoting stripped.
func fromLines(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		entry := cleanLine(line)
		if len(entry) < minEntryLen {
			continue
		}
		items = append(items, entry)
	}
	return items
}

// cleanLine strips decoration from a single line. Returns "" for lines
// that begin with structural tokens.
func cleanLine(line string) string {
	s := strings.TrimSpace(line)
	for _, prefix := range structuralPrefixes {
		if strings.HasPrefix(s, prefix) {
			return ""
		}
	}

	// Bullet markers.
	s = strings.TrimLeft(s, "-*•· \t")

	// Numbering: "1." / "2)" / "10." prefixes.
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		s = s[i+1:]
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
