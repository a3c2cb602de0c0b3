// Package types provides type definitions for structured data used throughout the career-advisor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Tier is the pedagogical level of a course after normalization.
type Tier string

// Tier constants define the three presentation tiers plus the holding
// bucket for courses whose level label did not map to any of them.
const (
	TierIntro        Tier = "INTRO"
	TierIntermediate Tier = "INTERMEDIATE"
	TierAdvanced     Tier = "ADVANCED"
	TierUnclassified Tier = "UNCLASSIFIED"
)

// PresentationTiers lists the tiers shown to users, in display order.
var PresentationTiers = []Tier{TierIntro, TierIntermediate, TierAdvanced}

// Course is a retrieved (never authored) course record from the search provider.
type Course struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Skills      string `json:"skills"` // comma-separated skills taught
	URL         string `json:"url"`
	Level       string `json:"level"` // raw level label from the provider
	Platform    string `json:"platform"`
	Tier        Tier   `json:"tier"`
}

// Valid reports whether the course may be surfaced to a user.
// A surfaced course must have a non-empty title and enrollment URL.
func (c Course) Valid() bool {
	return strings.TrimSpace(c.Title) != "" && strings.TrimSpace(c.URL) != ""
}

// SkillList splits the comma-separated skills string into trimmed,
// non-empty entries.
func (c Course) SkillList() []string {
	parts := strings.Split(c.Skills, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
