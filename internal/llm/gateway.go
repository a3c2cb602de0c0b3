package llm

import (
	"context"
	"errors"

	"github.com/jordan/career-advisor/internal/logger"
	"github.com/rs/zerolog"
)

// ErrAllModelsFailed is returned when every model in the fallback ladder
// has exhausted its retry budget.
var ErrAllModelsFailed = errors.New("all models failed")

// Gateway walks a fixed ordered list of model identifiers, retrying each
// model up to a per-model budget before advancing to the next. It never
// stores prompts or responses.
type Gateway struct {
	client     Client
	models     []string
	maxRetries int
	log        zerolog.Logger
}

// NewGateway creates a gateway over the given client. models must name at
// least one model; maxRetries below 1 is treated as 1.
func NewGateway(client Client, models []string, maxRetries int) *Gateway {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Gateway{
		client:     client,
		models:     models,
		maxRetries: maxRetries,
		log:        logger.Component("llm_gateway"),
	}
}

// Complete returns a completion for prompt, with contextPrefix (when
// non-empty) prepended. Transport failures are retried per model; the
// next model is attempted only once the current one's budget is spent.
// Fails with ErrAllModelsFailed only when the whole ladder is exhausted.
func (g *Gateway) Complete(ctx context.Context, prompt, contextPrefix string) (string, error) {
	full := prompt
	if contextPrefix != "" {
		full = contextPrefix + "\n\n" + prompt
	}

	for _, model := range g.models {
		for attempt := 1; attempt <= g.maxRetries; attempt++ {
			text, err := g.client.Generate(ctx, model, full)
			if err == nil {
				return text, nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			g.log.Warn().
				Str("model", model).
				Int("attempt", attempt).
				Err(err).
				Msg("model call failed")
		}
	}

	g.log.Error().Int("models_tried", len(g.models)).Msg("every model exhausted its retries")
	return "", ErrAllModelsFailed
}

// Answer wraps Complete into the user-safe tuple contract: on failure the
// returned text is a neutral placeholder and ok is false. Callers must
// treat a false ok as a signal, never as real content.
func (g *Gateway) Answer(ctx context.Context, prompt, contextPrefix string) (string, bool) {
	text, err := g.Complete(ctx, prompt, contextPrefix)
	if err != nil {
		return NeutralReply, false
	}
	return text, true
}
