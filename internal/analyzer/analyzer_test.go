package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jordan/career-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers prompts by matching substrings, in registration order.
type scriptedLLM struct {
	rules   []scriptRule
	failAll bool
	prompts []string
}

type scriptRule struct {
	match string
	reply string
}

func (s *scriptedLLM) on(match, reply string) *scriptedLLM {
	s.rules = append(s.rules, scriptRule{match: match, reply: reply})
	return s
}

func (s *scriptedLLM) Complete(_ context.Context, prompt, _ string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.failAll {
		return "", errors.New("all models failed")
	}
	for _, rule := range s.rules {
		if strings.Contains(prompt, rule.match) {
			return rule.reply, nil
		}
	}
	return "[]", nil
}

func TestExtractSkills_DedupesPreservingCase(t *testing.T) {
	fake := (&scriptedLLM{}).on("resume analyst", `["Python", "SQL", "python", "Pandas", "sql"]`)
	a := New(fake)

	skills, err := a.ExtractSkills(context.Background(), "some resume text")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL", "Pandas"}, skills)
}

func TestExtractSkills_GatewayFailure(t *testing.T) {
	fake := &scriptedLLM{failAll: true}
	a := New(fake)

	_, err := a.ExtractSkills(context.Background(), "text")
	require.Error(t, err)
}

func TestAnalyzeGap_MissingDisjointFromExtracted(t *testing.T) {
	fake := (&scriptedLLM{}).
		on("keywords", `["machine learning", "statistics", "python"]`).
		on("MISSING", `["TensorFlow", "python", "MLOps", "SQL"]`)
	a := New(fake)

	extracted := []string{"Python", "SQL", "Excel"}
	gap := a.AnalyzeGap(context.Background(), extracted, "Machine Learning Engineer")

	require.NotEmpty(t, gap.Missing)
	for _, m := range gap.Missing {
		assert.False(t, types.ContainsFold(extracted, m), "missing skill %q repeats an extracted skill", m)
	}
	assert.Equal(t, []string{"TensorFlow", "MLOps"}, gap.Missing)
}

func TestAnalyzeGap_TransferableFromKeywords(t *testing.T) {
	fake := (&scriptedLLM{}).
		on("keywords", `["python", "statistics", "cloud"]`).
		on("MISSING", `["Airflow"]`)
	a := New(fake)

	gap := a.AnalyzeGap(context.Background(), []string{"Python", "Excel", "Statistics 101"}, "Data Engineer")
	assert.Equal(t, []string{"Python", "Statistics 101"}, gap.Transferable)
}

func TestAnalyzeGap_RetriesWithSimplerPrompt(t *testing.T) {
	fake := (&scriptedLLM{}).
		on("keywords", `["devops"]`).
		on("MISSING", "Sorry, I couldn't process that request.").
		on("essential technical skills", `["Terraform", "Kubernetes"]`)
	a := New(fake)

	gap := a.AnalyzeGap(context.Background(), []string{"Linux"}, "DevOps Engineer")
	assert.Equal(t, []string{"Terraform", "Kubernetes"}, gap.Missing)
	assert.False(t, gap.Unavailable())
}

func TestAnalyzeGap_MarkerOnTotalFailure(t *testing.T) {
	fake := &scriptedLLM{failAll: true}
	a := New(fake)

	gap := a.AnalyzeGap(context.Background(), []string{"Python"}, "Data Scientist")
	require.Len(t, gap.Missing, 1)
	assert.Equal(t, SkillsUnavailableMarker, gap.Missing[0])
	assert.True(t, gap.Unavailable())
}

func TestAnalyzeGap_KeywordFallbackUsesRoleTokens(t *testing.T) {
	// Keyword probe fails; the role's own tokens ("data", "scientist")
	// still select the transferable subset.
	fake := (&scriptedLLM{}).
		on("keywords", "Sorry, try again later.").
		on("MISSING", `["MLOps"]`)
	a := New(fake)

	gap := a.AnalyzeGap(context.Background(), []string{"Data Modeling", "Excel"}, "Data Scientist")
	assert.Equal(t, []string{"Data Modeling"}, gap.Transferable)
}

func TestAnalyzeGap_PromptEnumeratesAtMostTwenty(t *testing.T) {
	var extracted []string
	for i := 0; i < 30; i++ {
		extracted = append(extracted, "Skill"+strings.Repeat("x", i+1))
	}
	fake := (&scriptedLLM{}).
		on("keywords", `["nothing"]`).
		on("MISSING", `["Something New"]`)
	a := New(fake)

	a.AnalyzeGap(context.Background(), extracted, "Analyst")

	var gapPrompt string
	for _, p := range fake.prompts {
		if strings.Contains(p, "MISSING") {
			gapPrompt = p
		}
	}
	require.NotEmpty(t, gapPrompt)
	assert.NotContains(t, gapPrompt, extracted[20], "only the first 20 skills are enumerated")
	assert.Contains(t, gapPrompt, extracted[19])
}

func TestTopSkillsForRole_CapsAtFive(t *testing.T) {
	fake := (&scriptedLLM{}).on("5 most important", `["One A","Two B","Three C","Four D","Five E","Six F"]`)
	a := New(fake)

	skills, err := a.TopSkillsForRole(context.Background(), "Data Analyst")
	require.NoError(t, err)
	assert.Len(t, skills, 5)
}

func TestTopSkillsForRole_ShortListPassedThrough(t *testing.T) {
	fake := (&scriptedLLM{}).on("5 most important", `["Only One", "And Two"]`)
	a := New(fake)

	skills, err := a.TopSkillsForRole(context.Background(), "Data Analyst")
	require.NoError(t, err)
	assert.Len(t, skills, 2)
}
