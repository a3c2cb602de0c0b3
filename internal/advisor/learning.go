package advisor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jordan/career-advisor/internal/courses"
	"github.com/jordan/career-advisor/internal/plan"
	"github.com/jordan/career-advisor/internal/types"
)

// Learning-path flow prompts.
const (
	promptLearnAskName = "Welcome! Let's build you a learning path. What's your name?"
	promptLearnAskRole = "Which role are you working toward?"
	promptManualSkills = "I couldn't pin down the key skills for that role. Please list 5 skills you'd like to work on, separated by commas."
	promptManualTooFew = "I need at least 5 comma-separated skills to build your path. Please list 5."
)

// LearningSession is the per-conversation state of the self-rating flow.
type LearningSession struct {
	State             State                `json:"state"`
	Name              string               `json:"name"`
	Role              string               `json:"role"`
	Skills            []string             `json:"skills"`
	Ratings           map[string]int       `json:"skill_ratings"`
	CurrentSkillIndex int                  `json:"current_skill_index"`
	Plan              types.TransitionPlan `json:"plan"`
	Messages          []ChatMessage        `json:"messages"`
}

// NewLearningSession starts a fresh learning-path conversation.
func NewLearningSession() *LearningSession {
	return &LearningSession{State: StateAskName, Ratings: make(map[string]int)}
}

// Greeting is the opening prompt of the flow.
func (s *LearningSession) Greeting() string { return promptLearnAskName }

func (s *LearningSession) reset() {
	*s = *NewLearningSession()
}

func (s *LearningSession) ratingPrompt() string {
	skill := s.Skills[s.CurrentSkillIndex]
	return fmt.Sprintf("On a scale of 1-5, how would you rate your %s skills? (%d of %d)",
		skill, s.CurrentSkillIndex+1, ratedSkillCount)
}

// LearningTurn advances the learning-path conversation by one user turn.
// An out-of-range rating re-emits the same skill prompt without advancing
// the skill index.
func (o *Orchestrator) LearningTurn(ctx context.Context, s *LearningSession, input string) string {
	trimmed := strings.TrimSpace(input)

	switch s.State {
	case StateAskName:
		if trimmed == "" {
			return promptLearnAskName
		}
		s.Name = trimmed
		s.State = StateAskRole
		return fmt.Sprintf("Great to meet you, %s! %s", s.Name, promptLearnAskRole)

	case StateAskRole:
		if trimmed == "" {
			return promptLearnAskRole
		}
		s.Role = trimmed

		skills, err := o.skills.TopSkillsForRole(ctx, s.Role)
		if err != nil || len(skills) < ratedSkillCount {
			if err != nil {
				o.log.Warn().Err(err).Str("role", s.Role).Msg("top skills lookup failed")
			}
			s.State = StateManualSkills
			return promptManualSkills
		}
		s.Skills = skills[:ratedSkillCount]
		s.State = StateRateSkills
		return s.ratingPrompt()

	case StateManualSkills:
		skills := splitSkills(trimmed)
		if len(skills) < ratedSkillCount {
			return promptManualTooFew
		}
		s.Skills = skills[:ratedSkillCount]
		s.State = StateRateSkills
		return s.ratingPrompt()

	case StateRateSkills:
		rating, err := strconv.Atoi(trimmed)
		if err != nil || rating < 1 || rating > 5 {
			return "Please enter a whole number from 1 to 5. " + s.ratingPrompt()
		}
		s.Ratings[s.Skills[s.CurrentSkillIndex]] = rating
		s.CurrentSkillIndex++
		if s.CurrentSkillIndex < ratedSkillCount {
			return s.ratingPrompt()
		}
		o.generateLearningPlan(ctx, s)
		return renderPlan(s.Plan)

	case StateDisplayResults:
		if isRestart(trimmed) {
			s.reset()
			return promptLearnAskName
		}
		reply := o.followUp(ctx, s.Name, s.Role, s.focusSkills(), s.Messages, trimmed)
		s.Messages = appendBounded(s.Messages, ChatMessage{From: "user", Text: trimmed}, ChatMessage{From: "advisor", Text: reply})
		return reply

	default:
		o.log.Warn().Str("state", string(s.State)).Msg("turn received in transient state")
		return promptLearnAskName
	}
}

// focusSkills returns the low-rated skills in rating order, the bias list
// for the course search.
func (s *LearningSession) focusSkills() []string {
	var focus []string
	for _, skill := range s.Skills {
		if rating, ok := s.Ratings[skill]; ok && rating <= lowRatingThreshold {
			focus = append(focus, skill)
		}
	}
	return focus
}

// strongSkills returns the skills rated 4 or above.
func (s *LearningSession) strongSkills() []string {
	var strong []string
	for _, skill := range s.Skills {
		if s.Ratings[skill] >= 4 {
			strong = append(strong, skill)
		}
	}
	return strong
}

// generateLearningPlan runs the course pipeline for the rated skills and
// leaves the session at DISPLAY_RESULTS.
func (o *Orchestrator) generateLearningPlan(ctx context.Context, s *LearningSession) {
	s.State = StateGenerateCourses

	focus := s.focusSkills()
	found, err := o.courses.Search(ctx, s.Role, focus, learningSearchLimit)
	if err != nil {
		o.log.Warn().Err(err).Str("role", s.Role).Msg("course search unavailable")
		found = nil
	} else {
		found = courses.Redistribute(found)
	}

	if _, err := o.store.PutLearningPath(ctx, s.Name, s.Role, s.Ratings); err != nil {
		o.log.Error().Err(err).Str("user_name", s.Name).Str("role", s.Role).Msg("failed to persist learning path")
	}

	s.Plan = o.plans.Build(ctx, plan.Input{
		Name:         s.Name,
		Role:         s.Role,
		Extracted:    s.Skills,
		Transferable: s.strongSkills(),
		Missing:      focus,
		Courses:      found,
	})
	s.State = StateDisplayResults
}

// splitSkills parses a comma-separated skill list, dropping empties and
// case-insensitive duplicates.
func splitSkills(input string) []string {
	seen := make(map[string]bool)
	var skills []string
	for _, part := range strings.Split(input, ",") {
		skill := strings.TrimSpace(part)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}
	return skills
}
