package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jordan/career-advisor/internal/llm"
	"github.com/jordan/career-advisor/internal/prompts"
	"github.com/jordan/career-advisor/internal/types"
)

const promptFile = "advisory.json"

// maxStoredMessages bounds the chat history kept on a session.
const maxStoredMessages = 10

// maxContextMessages bounds how many recent messages are sent to the
// model with a follow-up question.
const maxContextMessages = 6

// followUp answers a question at DISPLAY_RESULTS using a bounded context
// of name, role, missing skills, and recent messages. Gateway failure
// yields the neutral reply, never an error.
func (o *Orchestrator) followUp(ctx context.Context, name, role string, missing []string, history []ChatMessage, question string) string {
	recent := history
	if len(recent) > maxContextMessages {
		recent = recent[len(recent)-maxContextMessages:]
	}
	var transcript strings.Builder
	for _, m := range recent {
		fmt.Fprintf(&transcript, "%s: %s\n", m.From, m.Text)
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "followup_chat"), map[string]string{
		"Name":           name,
		"Role":           role,
		"MissingSkills":  strings.Join(missing, ", "),
		"RecentMessages": transcript.String(),
		"Question":       question,
	})

	reply, err := o.llm.Complete(ctx, prompt, "")
	if err != nil || llm.IsUnavailable(reply) {
		o.log.Warn().Err(err).Str("user_name", name).Str("role", role).Msg("follow-up answer unavailable")
		return llm.NeutralReply
	}
	return strings.TrimSpace(reply)
}

// Answer handles a standalone career question with caller-supplied
// context. Unlike followUp it surfaces gateway failure to the caller so
// the API can map it to a service-unavailable response.
func (o *Orchestrator) Answer(ctx context.Context, question, userContext string) (string, error) {
	return o.llm.Complete(ctx, question, userContext)
}

// SaveSnapshot persists the session for "resume where you left off".
// Only finished conversations are snapshotted, so half-completed flows do
// not clutter the history.
func (o *Orchestrator) SaveSnapshot(ctx context.Context, sess any) error {
	var (
		state      State
		userName   string
		role       string
		sourcePage string
	)
	switch s := sess.(type) {
	case *TransitionSession:
		state, userName, role, sourcePage = s.State, s.Name, s.Role, types.SourceCareerTransition
	case *LearningSession:
		state, userName, role, sourcePage = s.State, s.Name, s.Role, types.SourceLearningPath
	default:
		return fmt.Errorf("unsupported session type %T", sess)
	}

	if state != StateDisplayResults {
		return nil
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	return o.store.PutSessionSnapshot(ctx, types.SessionSnapshot{
		UserName:   userName,
		State:      raw,
		Timestamp:  time.Now().UTC(),
		SourcePage: sourcePage,
		Role:       role,
	})
}
