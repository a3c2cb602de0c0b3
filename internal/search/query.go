package search

import (
	"fmt"
	"strings"
)

// maxFocusSkills caps how many focus skills are named in the query text.
const maxFocusSkills = 3

// Sanitize strips quoting and separator characters from a value before it
// is embedded in a query payload. This is the single chokepoint for every
// string that travels to the provider as a literal argument.
func Sanitize(s string) string {
	replacer := strings.NewReplacer("'", "", `"`, "", ";", "")
	return strings.TrimSpace(replacer.Replace(s))
}

// BuildQuery composes the natural-language search query for a target role
// and optional focus skills. When skills are present, the query explicitly
// asks for courses teaching the top three.
func BuildQuery(role string, focusSkills []string) string {
	query := fmt.Sprintf("Courses that help someone become a %s", Sanitize(role))

	var cleaned []string
	for _, skill := range focusSkills {
		if s := Sanitize(skill); s != "" {
			cleaned = append(cleaned, s)
		}
		if len(cleaned) == maxFocusSkills {
			break
		}
	}
	if len(cleaned) > 0 {
		query += fmt.Sprintf(". Focus on courses teaching %s", strings.Join(cleaned, ", "))
	}
	return query
}
