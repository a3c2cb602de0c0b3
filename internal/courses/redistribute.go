package courses

import "github.com/jordan/career-advisor/internal/types"

// Redistribute re-tiers a retrieved course list so that each presentation
// tier is covered when enough suitable courses exist. The input order is
// preserved; only Tier fields change. Running it twice yields the same
// tiering as running it once.
func Redistribute(list []types.Course) []types.Course {
	out := make([]types.Course, len(list))
	copy(out, list)

	counts := map[types.Tier]int{}
	for _, c := range out {
		if c.Tier != types.TierUnclassified {
			counts[c.Tier]++
		}
	}

	// Place every unclassified course: title keywords first, then the
	// currently smallest tier. Counts update after each assignment so a
	// run of unclassified courses spreads out instead of piling up.
	for i := range out {
		if out[i].Tier != types.TierUnclassified {
			continue
		}
		tier := DefaultKeywords.titleTier(out[i].Title)
		if tier == types.TierUnclassified {
			tier = smallestTier(counts)
		}
		out[i].Tier = tier
		counts[tier]++
	}

	// Fill any still-empty tier by moving one course out of the largest
	// tier, as long as the donor keeps at least one course. A course whose
	// title matches the target tier's keywords is preferred.
	for _, empty := range types.PresentationTiers {
		if counts[empty] > 0 {
			continue
		}
		donor := largestTier(counts)
		if counts[donor] < 2 {
			continue
		}
		idx := pickDonorCourse(out, donor, empty)
		if idx < 0 {
			continue
		}
		out[idx].Tier = empty
		counts[donor]--
		counts[empty]++
	}

	return out
}

// smallestTier returns the presentation tier with the fewest courses.
// Ties resolve in display order: INTRO < INTERMEDIATE < ADVANCED.
func smallestTier(counts map[types.Tier]int) types.Tier {
	best := types.PresentationTiers[0]
	for _, tier := range types.PresentationTiers[1:] {
		if counts[tier] < counts[best] {
			best = tier
		}
	}
	return best
}

// largestTier returns the presentation tier with the most courses.
// Ties resolve in display order.
func largestTier(counts map[types.Tier]int) types.Tier {
	best := types.PresentationTiers[0]
	for _, tier := range types.PresentationTiers[1:] {
		if counts[tier] > counts[best] {
			best = tier
		}
	}
	return best
}

// pickDonorCourse selects which course to move from the donor tier into
// the target tier, preferring one whose title matches the target tier's
// keywords. Returns -1 when the donor tier holds no courses.
func pickDonorCourse(list []types.Course, donor, target types.Tier) int {
	fallback := -1
	for i := range list {
		if list[i].Tier != donor {
			continue
		}
		if DefaultKeywords.titleMatches(list[i].Title, target) {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}
