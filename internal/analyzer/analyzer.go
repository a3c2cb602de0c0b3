// Package analyzer identifies extracted, transferable, and missing skills
// for a candidate against a target role.
package analyzer

import (
	"context"
	"strings"

	"github.com/jordan/career-advisor/internal/llm"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/parsing"
	"github.com/jordan/career-advisor/internal/prompts"
	"github.com/jordan/career-advisor/internal/types"
	"github.com/rs/zerolog"
)

const promptFile = "advisory.json"

// maxSkillsInPrompt caps how many extracted skills are enumerated in the
// gap prompt; beyond this the prompt stops getting more informative.
const maxSkillsInPrompt = 20

// SkillsUnavailableMarker is the terminal fallback entry emitted when the
// gap analysis could not produce anything usable. Downstream stages detect
// it with llm.IsUnavailable and surface an "analysis unavailable" state
// instead of falsifying results.
const SkillsUnavailableMarker = "Sorry, we're having trouble identifying skill gaps right now"

// Completer is the slice of the LLM gateway the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, prompt, contextPrefix string) (string, error)
}

// GapAnalysis is the result of analyzing a candidate against a role.
type GapAnalysis struct {
	// Transferable are the candidate's extracted skills judged relevant
	// to the target role.
	Transferable []string
	// Missing are the skills to acquire. Never overlaps the extracted
	// set case-insensitively. May hold a single marker entry when the
	// analysis was unavailable.
	Missing []string
}

// Unavailable reports whether the analysis degraded to the marker entry.
func (g GapAnalysis) Unavailable() bool {
	return len(g.Missing) == 1 && llm.IsUnavailable(g.Missing[0])
}

// Analyzer runs skill extraction and gap analysis through the LLM gateway.
type Analyzer struct {
	llm Completer
	log zerolog.Logger
}

// New creates an analyzer over the given gateway.
func New(completer Completer) *Analyzer {
	return &Analyzer{llm: completer, log: logger.Component("skill_analyzer")}
}

// ExtractSkills pulls the skill names out of raw resume text. The result
// is an ordered, de-duplicated, case-preserving set. Returns an error only
// when the gateway itself failed.
func (a *Analyzer) ExtractSkills(ctx context.Context, resumeText string) ([]string, error) {
	prompt := prompts.Format(prompts.MustGet(promptFile, "skill_extraction"), map[string]string{
		"ResumeText": resumeText,
	})

	reply, err := a.llm.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}
	return dedupeFold(parsing.ExtractList(reply)), nil
}

// AnalyzeGap computes the transferable and missing skill lists for
// (extracted, role). It never returns an error: degenerate model output is
// retried once with a simpler prompt, and total failure yields the marker
// entry.
func (a *Analyzer) AnalyzeGap(ctx context.Context, extracted []string, role string) GapAnalysis {
	keywords := a.roleKeywords(ctx, role)
	transferable := relevantSubset(extracted, keywords)

	missing := a.missingSkills(ctx, extracted, transferable, role)
	if len(missing) == 0 {
		a.log.Warn().Str("role", role).Msg("gap analysis unavailable, emitting marker entry")
		missing = []string{SkillsUnavailableMarker}
	}

	return GapAnalysis{Transferable: transferable, Missing: missing}
}

// TopSkillsForRole asks for the five most important skills of a role.
// Callers should fall back to manual skill entry when fewer than five
// come back.
func (a *Analyzer) TopSkillsForRole(ctx context.Context, role string) ([]string, error) {
	prompt := prompts.Format(prompts.MustGet(promptFile, "top_skills"), map[string]string{
		"Role": role,
	})

	reply, err := a.llm.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	skills := dedupeFold(parsing.ExtractList(reply))
	if len(skills) > 5 {
		skills = skills[:5]
	}
	return skills, nil
}

// roleKeywords asks for ~10 keywords characterizing the role, falling back
// to the role's own tokens when the model is unavailable.
func (a *Analyzer) roleKeywords(ctx context.Context, role string) []string {
	prompt := prompts.Format(prompts.MustGet(promptFile, "role_keywords"), map[string]string{
		"Role": role,
	})

	reply, err := a.llm.Complete(ctx, prompt, "")
	if err == nil && !llm.IsUnavailable(reply) {
		if keywords := parsing.ExtractList(reply); len(keywords) > 0 {
			return keywords
		}
	}

	// Fallback: the role's own words carry some signal ("Data Scientist"
	// -> "data", "scientist").
	var tokens []string
	for _, tok := range strings.Fields(role) {
		if len(tok) > 3 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// missingSkills runs the gap prompt, retrying once with a simpler prompt
// on degenerate output. The returned list never overlaps extracted
// case-insensitively.
func (a *Analyzer) missingSkills(ctx context.Context, extracted, transferable []string, role string) []string {
	enumerated := extracted
	if len(enumerated) > maxSkillsInPrompt {
		enumerated = enumerated[:maxSkillsInPrompt]
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "missing_skills"), map[string]string{
		"Role":            role,
		"ExtractedSkills": strings.Join(enumerated, ", "),
		"RelevantSkills":  strings.Join(transferable, ", "),
	})

	if missing := a.gapAttempt(ctx, prompt, extracted); len(missing) > 0 {
		return missing
	}

	// Simpler prompt: no skill enumeration, just the role.
	simple := prompts.Format(prompts.MustGet(promptFile, "missing_skills_simple"), map[string]string{
		"Role": role,
	})
	return a.gapAttempt(ctx, simple, extracted)
}

// gapAttempt runs one gap prompt and filters the reply against the
// extracted set. Returns nil on degenerate output.
func (a *Analyzer) gapAttempt(ctx context.Context, prompt string, extracted []string) []string {
	reply, err := a.llm.Complete(ctx, prompt, "")
	if err != nil || llm.IsUnavailable(reply) {
		return nil
	}

	var missing []string
	for _, skill := range dedupeFold(parsing.ExtractList(reply)) {
		if types.ContainsFold(extracted, skill) {
			continue
		}
		missing = append(missing, skill)
	}
	return missing
}

// relevantSubset selects the extracted skills whose lowercase form
// contains any relevance keyword.
func relevantSubset(extracted, keywords []string) []string {
	var relevant []string
	for _, skill := range extracted {
		lower := strings.ToLower(skill)
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw == "" {
				continue
			}
			if strings.Contains(lower, kw) {
				relevant = append(relevant, skill)
				break
			}
		}
	}
	return relevant
}

// dedupeFold removes case-insensitive duplicates, preserving first-seen
// order and capitalization.
func dedupeFold(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(item))
	}
	return out
}
