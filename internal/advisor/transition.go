package advisor

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jordan/career-advisor/internal/courses"
	"github.com/jordan/career-advisor/internal/plan"
	"github.com/jordan/career-advisor/internal/types"
)

// Career-transition flow prompts.
const (
	promptAskName        = "Hi! I'm your career transition advisor. What's your name?"
	promptAskResume      = "Paste the text of your resume (or upload it) so I can see your current skills."
	promptResumeTooShort = "That resume looks too short to analyze. Please provide at least a few sentences of resume text."
	promptAskTargetRole  = "What role would you like to transition into?"
)

// TransitionSession is the per-conversation state of the resume-based
// flow. It serializes cleanly for session snapshots.
type TransitionSession struct {
	State        State                `json:"state"`
	Name         string               `json:"name"`
	ResumeText   string               `json:"resume_text"`
	Role         string               `json:"role"`
	Extracted    []string             `json:"extracted_skills"`
	Transferable []string             `json:"transferable_skills"`
	Missing      []string             `json:"missing_skills"`
	Plan         types.TransitionPlan `json:"plan"`
	Messages     []ChatMessage        `json:"messages"`
}

// NewTransitionSession starts a fresh career-transition conversation.
func NewTransitionSession() *TransitionSession {
	return &TransitionSession{State: StateAskName}
}

// Greeting is the opening prompt of the flow.
func (s *TransitionSession) Greeting() string { return promptAskName }

func (s *TransitionSession) reset() {
	*s = *NewTransitionSession()
}

// TransitionTurn advances the career-transition conversation by one user
// turn and returns the advisor's reply. Invalid input re-emits the prompt
// of the current state without advancing.
func (o *Orchestrator) TransitionTurn(ctx context.Context, s *TransitionSession, input string) string {
	trimmed := strings.TrimSpace(input)

	switch s.State {
	case StateAskName:
		if trimmed == "" {
			return promptAskName
		}
		s.Name = trimmed
		s.State = StateAskResume
		return fmt.Sprintf("Nice to meet you, %s! %s", s.Name, promptAskResume)

	case StateAskResume:
		if len(trimmed) < minResumeChars {
			return promptResumeTooShort
		}
		s.ResumeText = trimmed
		s.State = StateAskTargetRole
		return promptAskTargetRole

	case StateAskTargetRole:
		if trimmed == "" {
			return promptAskTargetRole
		}
		s.Role = trimmed
		o.analyzeTransition(ctx, s)
		return renderPlan(s.Plan)

	case StateDisplayResults:
		if isRestart(trimmed) {
			s.reset()
			return promptAskName
		}
		reply := o.followUp(ctx, s.Name, s.Role, s.Missing, s.Messages, trimmed)
		s.Messages = appendBounded(s.Messages, ChatMessage{From: "user", Text: trimmed}, ChatMessage{From: "advisor", Text: reply})
		return reply

	default:
		// Transient states never wait for input.
		o.log.Warn().Str("state", string(s.State)).Msg("turn received in transient state")
		return promptAskName
	}
}

// analyzeTransition runs the full analysis pipeline and leaves the session
// at DISPLAY_RESULTS. Every step degrades instead of failing: missing
// analysis or courses surface through the plan, never as an error to the
// user.
func (o *Orchestrator) analyzeTransition(ctx context.Context, s *TransitionSession) {
	s.State = StateAnalyzeSkills

	extracted, err := o.skills.ExtractSkills(ctx, s.ResumeText)
	if err != nil {
		o.log.Error().Err(err).Str("user_name", s.Name).Str("role", s.Role).Msg("skill extraction failed")
		extracted = nil
	}
	gap := o.skills.AnalyzeGap(ctx, extracted, s.Role)

	s.Extracted = extracted
	s.Transferable = gap.Transferable
	s.Missing = gap.Missing

	var focus []string
	if !gap.Unavailable() {
		focus = gap.Missing
	}

	// Persistence and course search are independent; run them in parallel.
	var found []types.Course
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := o.store.PutResumeAnalysis(gctx, s.Name, s.ResumeText, extracted, s.Role, s.Missing); err != nil {
			o.log.Error().Err(err).Str("user_name", s.Name).Str("role", s.Role).Msg("failed to persist resume analysis")
		}
		return nil
	})
	g.Go(func() error {
		list, err := o.courses.Search(gctx, s.Role, focus, 0)
		if err != nil {
			o.log.Warn().Err(err).Str("role", s.Role).Msg("course search unavailable")
			return nil
		}
		found = courses.Redistribute(list)
		return nil
	})
	_ = g.Wait()

	s.Plan = o.plans.Build(ctx, plan.Input{
		Name:         s.Name,
		Role:         s.Role,
		Extracted:    s.Extracted,
		Transferable: s.Transferable,
		Missing:      s.Missing,
		Courses:      found,
	})
	s.State = StateDisplayResults
}

// appendBounded appends messages, keeping only the most recent
// maxStoredMessages.
func appendBounded(history []ChatMessage, msgs ...ChatMessage) []ChatMessage {
	history = append(history, msgs...)
	if len(history) > maxStoredMessages {
		history = history[len(history)-maxStoredMessages:]
	}
	return history
}
