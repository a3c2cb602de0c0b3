// Package advisor drives the two conversation flows as explicit finite
// state machines, bridging the analyzer, course search, plan formatter,
// and session store.
package advisor

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jordan/career-advisor/internal/analyzer"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/plan"
	"github.com/jordan/career-advisor/internal/store"
	"github.com/jordan/career-advisor/internal/types"
)

// State identifies where a conversation is in its flow.
type State string

// Conversation states. The two flows share ASK_NAME and DISPLAY_RESULTS.
const (
	StateAskName       State = "ASK_NAME"
	StateAskResume     State = "ASK_RESUME"
	StateAskTargetRole State = "ASK_TARGET_ROLE"
	StateAnalyzeSkills State = "ANALYZE_SKILLS"

	StateAskRole         State = "ASK_ROLE"
	StateManualSkills    State = "MANUAL_SKILLS"
	StateRateSkills      State = "RATE_SKILLS"
	StateGenerateCourses State = "GENERATE_COURSES"

	StateDisplayResults State = "DISPLAY_RESULTS"
)

// minResumeChars is the minimum extracted resume length accepted as a
// usable resume.
const minResumeChars = 50

// lowRatingThreshold marks a self-rated skill as a learning focus.
const lowRatingThreshold = 2

// ratedSkillCount is how many skills the learning-path flow rates.
const ratedSkillCount = 5

// learningSearchLimit is the course search limit for the rating flow.
const learningSearchLimit = 8

// restartKeywords reset a finished conversation back to ASK_NAME.
var restartKeywords = []string{"restart", "start over", "reset"}

// ChatMessage is one turn of follow-up conversation kept for context.
type ChatMessage struct {
	From string `json:"from"` // "user" | "advisor"
	Text string `json:"text"`
}

// SkillAnalyzer is the analyzer surface the orchestrator drives.
type SkillAnalyzer interface {
	ExtractSkills(ctx context.Context, resumeText string) ([]string, error)
	AnalyzeGap(ctx context.Context, extracted []string, role string) analyzer.GapAnalysis
	TopSkillsForRole(ctx context.Context, role string) ([]string, error)
}

// CourseSearcher finds courses for a role, optionally biased toward focus
// skills.
type CourseSearcher interface {
	Search(ctx context.Context, role string, focusSkills []string, limit int) ([]types.Course, error)
}

// PlanBuilder composes the final transition plan.
type PlanBuilder interface {
	Build(ctx context.Context, in plan.Input) types.TransitionPlan
}

// Completer is the LLM gateway surface used for follow-up questions.
type Completer interface {
	Complete(ctx context.Context, prompt, contextPrefix string) (string, error)
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Skills  SkillAnalyzer
	Courses CourseSearcher
	Plans   PlanBuilder
	Store   store.Store
	LLM     Completer
}

// Orchestrator runs conversations. It holds no per-session state; each
// session is a value owned by the caller.
type Orchestrator struct {
	skills  SkillAnalyzer
	courses CourseSearcher
	plans   PlanBuilder
	store   store.Store
	llm     Completer
	log     zerolog.Logger
}

// New creates an orchestrator from its collaborators.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		skills:  deps.Skills,
		courses: deps.Courses,
		plans:   deps.Plans,
		store:   deps.Store,
		llm:     deps.LLM,
		log:     logger.Component("orchestrator"),
	}
}

func isRestart(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, kw := range restartKeywords {
		if input == kw {
			return true
		}
	}
	return false
}

// renderPlan flattens a plan into the single reply shown at
// DISPLAY_RESULTS.
func renderPlan(p types.TransitionPlan) string {
	sections := []string{
		p.Introduction,
		p.SkillAssessment,
		p.CourseRecommendations,
		p.CareerAdvice,
		"Ask me anything about this plan, or say \"restart\" to begin again.",
	}
	return strings.Join(sections, "\n\n")
}
