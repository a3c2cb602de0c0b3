package llm

import "strings"

// NeutralReply is the user-safe placeholder emitted when every model has
// failed. Downstream stages recognize it by prefix.
const NeutralReply = "Sorry, we're having trouble analyzing that right now. Please try again in a moment."

// markerPrefix identifies placeholder text produced by a failed stage.
const markerPrefix = "Sorry, we're having trouble"

// markerTerms flag degenerate model output that should be treated as a
// sentinel rather than content.
var markerTerms = []string{"sorry", "trouble", "try again", "error", "couldn't"}

// IsUnavailable reports whether text is a marker entry: a placeholder
// signalling "unavailable" rather than real content. Upstream stages use
// this to surface a coherent degraded state instead of falsifying results.
func IsUnavailable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, markerPrefix) {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, term := range markerTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
