package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResumeAnalysis is the result of processing one resume for one target role.
// Analyses are append-only; newer rows supersede older ones by creation time.
type ResumeAnalysis struct {
	ID              uuid.UUID `json:"id"`
	UserName        string    `json:"user_name"`
	ResumeText      string    `json:"resume_text"`
	ExtractedSkills []string  `json:"extracted_skills"`
	TargetRole      string    `json:"target_role"`
	MissingSkills   []string  `json:"missing_skills"`
	CreatedAt       time.Time `json:"created_at"`
}

// LearningPath is the result of the self-rating flow.
type LearningPath struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	TargetRole   string         `json:"target_role"`
	SkillRatings map[string]int `json:"skill_ratings"` // skill name -> rating in [1,5]
	CreatedAt    time.Time      `json:"created_at"`
}

// LowRatedSkills returns the skills rated at or below the threshold.
// These are the focus skills used to bias the course search query.
func (p LearningPath) LowRatedSkills(threshold int) []string {
	var low []string
	for skill, rating := range p.SkillRatings {
		if rating <= threshold {
			low = append(low, skill)
		}
	}
	return low
}

// SessionSnapshot is an opaque serialization of a conversation at a clean
// exit point, used solely for "resume where you left off".
type SessionSnapshot struct {
	UserName   string    `json:"user_name"`
	State      []byte    `json:"session_state"` // opaque JSON blob
	Timestamp  time.Time `json:"timestamp"`
	SourcePage string    `json:"source_page"` // "learning_path" | "career_transition"
	Role       string    `json:"role"`
}

// Snapshot source pages.
const (
	SourceLearningPath     = "learning_path"
	SourceCareerTransition = "career_transition"
)

// ContainsFold reports whether any entry of haystack equals needle
// case-insensitively.
func ContainsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(needle)) {
			return true
		}
	}
	return false
}
