package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts per-model behavior and records every call.
type fakeClient struct {
	failing map[string]bool // model -> always fails
	failN   map[string]int  // model -> remaining failures before success
	calls   []string        // "model" per invocation
	prompts []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{failing: map[string]bool{}, failN: map[string]int{}}
}

func (f *fakeClient) Generate(_ context.Context, model, prompt string) (string, error) {
	f.calls = append(f.calls, model)
	f.prompts = append(f.prompts, prompt)
	if f.failing[model] {
		return "", errors.New("transport down")
	}
	if n := f.failN[model]; n > 0 {
		f.failN[model] = n - 1
		return "", errors.New("transient failure")
	}
	return "reply from " + model, nil
}

func (f *fakeClient) Close() error { return nil }

func TestComplete_FirstModelSucceeds(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, []string{"primary", "secondary"}, 2)

	text, err := g.Complete(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "reply from primary", text)
	assert.Equal(t, []string{"primary"}, client.calls)
}

func TestComplete_RetriesBeforeAdvancing(t *testing.T) {
	client := newFakeClient()
	client.failN["primary"] = 1 // fail once, then succeed
	g := NewGateway(client, []string{"primary", "secondary"}, 2)

	text, err := g.Complete(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "reply from primary", text)
	// Both calls went to the primary; the ladder never advanced.
	assert.Equal(t, []string{"primary", "primary"}, client.calls)
}

func TestComplete_FallsBackAfterBudgetSpent(t *testing.T) {
	client := newFakeClient()
	client.failing["primary"] = true
	g := NewGateway(client, []string{"primary", "secondary"}, 2)

	text, err := g.Complete(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "reply from secondary", text)
	assert.Equal(t, []string{"primary", "primary", "secondary"}, client.calls)
}

func TestComplete_AllModelsExhausted(t *testing.T) {
	client := newFakeClient()
	client.failing["primary"] = true
	client.failing["secondary"] = true
	g := NewGateway(client, []string{"primary", "secondary"}, 2)

	_, err := g.Complete(context.Background(), "hello", "")
	require.ErrorIs(t, err, ErrAllModelsFailed)
	// Every model gets its full retry budget before the gateway gives up.
	assert.Len(t, client.calls, 4)
}

func TestComplete_ContextPrefixPrepended(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, []string{"primary"}, 2)

	_, err := g.Complete(context.Background(), "question", "background info")
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Equal(t, "background info\n\nquestion", client.prompts[0])
}

func TestComplete_CancelledContextStopsLadder(t *testing.T) {
	client := newFakeClient()
	client.failing["primary"] = true
	client.failing["secondary"] = true
	g := NewGateway(client, []string{"primary", "secondary"}, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Complete(ctx, "hello", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAllModelsFailed)
	// The ladder stops at the first post-cancellation check.
	assert.Len(t, client.calls, 1)
}

func TestAnswer_NeutralTextOnFailure(t *testing.T) {
	client := newFakeClient()
	client.failing["only"] = true
	g := NewGateway(client, []string{"only"}, 1)

	text, ok := g.Answer(context.Background(), "hello", "")
	assert.False(t, ok)
	assert.Equal(t, NeutralReply, text)
	assert.True(t, IsUnavailable(text))
}

func TestAnswer_PassesThroughOnSuccess(t *testing.T) {
	client := newFakeClient()
	g := NewGateway(client, []string{"only"}, 1)

	text, ok := g.Answer(context.Background(), "hello", "")
	assert.True(t, ok)
	assert.Equal(t, "reply from only", text)
}

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   ", true},
		{NeutralReply, true},
		{"Sorry, we're having trouble with skills", true},
		{"An error occurred upstream", true},
		{"I couldn't find anything", true},
		{"Please try again later", true},
		{"Python, SQL, and dbt are great skills", false},
		{fmt.Sprintf("Learn %s first", "Kubernetes"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsUnavailable(tt.text), "text %q", tt.text)
	}
}
