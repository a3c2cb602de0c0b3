// Package courses normalizes provider level labels into tiers and
// redistributes retrieved courses so every tier is covered when possible.
package courses

import (
	"strings"

	"github.com/jordan/career-advisor/internal/types"
)

// LevelKeywords holds every keyword list used for tier classification in
// one place, so the heuristics are not duplicated across layers.
type LevelKeywords struct {
	// Label substrings, matched case-insensitively against the raw level.
	IntroLabels        []string
	IntermediateLabels []string
	AdvancedLabels     []string
	UnclassifiedLabels []string

	// Title substrings used to re-tier unclassified courses.
	IntroTitles    []string
	AdvancedTitles []string
}

// DefaultKeywords is the canonical classification configuration.
var DefaultKeywords = LevelKeywords{
	IntroLabels:        []string{"beginner"},
	IntermediateLabels: []string{"intermediate"},
	AdvancedLabels:     []string{"advanced"},
	UnclassifiedLabels: []string{"all level", "all-level"},
	IntroTitles:        []string{"intro", "beginning", "basic", "fundamental", "foundation", "start"},
	AdvancedTitles:     []string{"advanced", "expert", "mastery", "professional", "master"},
}

// NormalizeLevel maps a raw provider level label onto a tier. The first
// matching rule wins; unknown labels default to ADVANCED so easy courses
// are not over-assigned.
func NormalizeLevel(label string) types.Tier {
	return DefaultKeywords.normalize(label)
}

func (k LevelKeywords) normalize(label string) types.Tier {
	lower := strings.ToLower(label)
	switch {
	case containsAny(lower, k.IntroLabels):
		return types.TierIntro
	case containsAny(lower, k.IntermediateLabels):
		return types.TierIntermediate
	case containsAny(lower, k.AdvancedLabels):
		return types.TierAdvanced
	case containsAny(lower, k.UnclassifiedLabels):
		return types.TierUnclassified
	default:
		return types.TierAdvanced
	}
}

// titleTier classifies a course title into INTRO or ADVANCED by keyword,
// or UNCLASSIFIED when neither keyword set matches.
func (k LevelKeywords) titleTier(title string) types.Tier {
	lower := strings.ToLower(title)
	if containsAny(lower, k.IntroTitles) {
		return types.TierIntro
	}
	if containsAny(lower, k.AdvancedTitles) {
		return types.TierAdvanced
	}
	return types.TierUnclassified
}

// titleMatches reports whether the title carries any keyword of the target
// tier. Used to prefer on-theme courses when rebalancing.
func (k LevelKeywords) titleMatches(title string, tier types.Tier) bool {
	lower := strings.ToLower(title)
	switch tier {
	case types.TierIntro:
		return containsAny(lower, k.IntroTitles)
	case types.TierAdvanced:
		return containsAny(lower, k.AdvancedTitles)
	default:
		return false
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
