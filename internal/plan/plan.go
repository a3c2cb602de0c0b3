// Package plan composes the human-readable transition plan out of the
// structured analysis and search results.
package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/jordan/career-advisor/internal/llm"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/prompts"
	"github.com/jordan/career-advisor/internal/types"
	"github.com/rs/zerolog"
)

const promptFile = "advisory.json"

// maxCoursesPerTier caps how many courses are rendered under each tier
// heading.
const maxCoursesPerTier = 2

// NeutralAdvice replaces the career-advice section when the model could
// not produce one.
const NeutralAdvice = "Focus on building one missing skill at a time through small hands-on projects, " +
	"share what you build publicly, and connect with people already working in the role. " +
	"Three to six months of steady practice is usually enough to be interview-ready."

// noCoursesSentence is the entire course-recommendations section when no
// qualifying course survived validation.
const noCoursesSentence = "We couldn't find matching courses for this role right now. " +
	"Try again later, or search your preferred learning platform for the missing skills listed above."

var tierHeadings = map[types.Tier]string{
	types.TierIntro:        "Introductory courses",
	types.TierIntermediate: "Intermediate courses",
	types.TierAdvanced:     "Advanced courses",
}

// Completer is the slice of the LLM gateway the formatter needs for the
// career-advice section.
type Completer interface {
	Complete(ctx context.Context, prompt, contextPrefix string) (string, error)
}

// Input carries everything the formatter composes a plan from.
type Input struct {
	Name         string
	Role         string
	Extracted    []string
	Transferable []string
	Missing      []string
	Courses      []types.Course
}

// Formatter builds TransitionPlan values. All sections except career
// advice are pure string composition.
type Formatter struct {
	llm Completer
	log zerolog.Logger
}

// New creates a formatter over the given gateway.
func New(completer Completer) *Formatter {
	return &Formatter{llm: completer, log: logger.Component("plan_formatter")}
}

// Build composes the full plan. It never fails: a gateway failure on the
// advice section substitutes a neutral stub.
func (f *Formatter) Build(ctx context.Context, in Input) types.TransitionPlan {
	recommendations, hasValid := CourseRecommendations(in.Courses)
	return types.TransitionPlan{
		Introduction:          Introduction(in.Name, in.Role),
		SkillAssessment:       SkillAssessment(in.Extracted, in.Transferable, in.Missing),
		CourseRecommendations: recommendations,
		CareerAdvice:          f.careerAdvice(ctx, in),
		HasValidCourses:       hasValid,
	}
}

// Introduction summarises the intent of the plan.
func Introduction(name, role string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(
		"Hi %s! Here is your personalized plan for transitioning into a %s role. "+
			"It covers the skills you already bring, the gaps to close, and courses to close them, "+
			"laid out for the next 3-6 months.",
		name, strings.TrimSpace(role))
}

// SkillAssessment lists transferable skills, other strong skills, and the
// prioritized missing skills. A marker entry in missing is rendered as an
// unavailability note instead of a skill list.
func SkillAssessment(extracted, transferable, missing []string) string {
	var sb strings.Builder

	sb.WriteString("Transferable skills:\n")
	writeSkillList(&sb, transferable, "We couldn't map any of your current skills directly onto this role.")

	other := subtractFold(extracted, transferable)
	sb.WriteString("\nOther strong skills:\n")
	writeSkillList(&sb, other, "None beyond the transferable ones above.")

	sb.WriteString("\nSkills to develop, in priority order:\n")
	if len(missing) == 1 && llm.IsUnavailable(missing[0]) {
		sb.WriteString(missing[0])
		sb.WriteByte('\n')
	} else {
		writeSkillList(&sb, missing, "No significant gaps found. You're well positioned already.")
	}

	return sb.String()
}

// CourseRecommendations renders tier sections in presentation order with
// at most two courses each. The second return is false when no qualifying
// course exists, in which case the section is a single explanation.
func CourseRecommendations(courses []types.Course) (string, bool) {
	byTier := make(map[types.Tier][]types.Course)
	total := 0
	for _, c := range courses {
		if !c.Valid() {
			continue
		}
		byTier[c.Tier] = append(byTier[c.Tier], c)
		total++
	}
	if total == 0 {
		return noCoursesSentence, false
	}

	var sb strings.Builder
	for _, tier := range types.PresentationTiers {
		sb.WriteString("## ")
		sb.WriteString(tierHeadings[tier])
		sb.WriteString("\n\n")

		shown := byTier[tier]
		if len(shown) == 0 {
			sb.WriteString("No courses at this level right now.\n\n")
			continue
		}
		if len(shown) > maxCoursesPerTier {
			shown = shown[:maxCoursesPerTier]
		}
		for _, c := range shown {
			writeCourse(&sb, c)
		}
	}
	return sb.String(), true
}

// careerAdvice asks the model for the advice section, substituting the
// neutral stub on failure.
func (f *Formatter) careerAdvice(ctx context.Context, in Input) string {
	missing := in.Missing
	if len(missing) == 1 && llm.IsUnavailable(missing[0]) {
		missing = nil
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "career_advice"), map[string]string{
		"Name":          in.Name,
		"Role":          in.Role,
		"MissingSkills": strings.Join(missing, ", "),
	})

	advice, err := f.llm.Complete(ctx, prompt, "")
	if err != nil || llm.IsUnavailable(advice) {
		f.log.Warn().Str("role", in.Role).Msg("career advice unavailable, using neutral stub")
		return NeutralAdvice
	}
	return strings.TrimSpace(advice)
}

func writeCourse(sb *strings.Builder, c types.Course) {
	sb.WriteString("### ")
	sb.WriteString(c.Title)
	sb.WriteByte('\n')

	platform := strings.TrimSpace(c.Platform)
	if platform == "" {
		platform = "Online"
	}
	level := strings.TrimSpace(c.Level)
	if level == "" {
		level = string(c.Tier)
	}
	fmt.Fprintf(sb, "%s | %s\n", platform, level)

	if desc := strings.TrimSpace(c.Description); desc != "" {
		sb.WriteString("What you'll learn: ")
		sb.WriteString(desc)
		sb.WriteByte('\n')
	}

	if skills := c.SkillList(); len(skills) > 0 {
		sb.WriteString("Key skills:\n")
		for _, s := range skills {
			sb.WriteString("- ")
			sb.WriteString(s)
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("Enroll: ")
	sb.WriteString(c.URL)
	sb.WriteString("\n\n")
}

func writeSkillList(sb *strings.Builder, skills []string, emptyNote string) {
	if len(skills) == 0 {
		sb.WriteString(emptyNote)
		sb.WriteByte('\n')
		return
	}
	for _, s := range skills {
		sb.WriteString("- ")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
}

// subtractFold returns the entries of a that do not appear in b,
// case-insensitively, preserving order.
func subtractFold(a, b []string) []string {
	var out []string
	for _, s := range a {
		if !types.ContainsFold(b, s) {
			out = append(out, s)
		}
	}
	return out
}
