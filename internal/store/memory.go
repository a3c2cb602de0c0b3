package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jordan/career-advisor/internal/types"
)

// Memory is an in-process Store used by tests and by the interactive CLI
// when no database is configured. Semantics mirror PG: analyses are
// append-only, snapshots are last-writer-wins per (user, timestamp).
type Memory struct {
	mu        sync.Mutex
	analyses  []types.ResumeAnalysis
	paths     []types.LearningPath
	snapshots map[string]map[time.Time]types.SessionSnapshot // user -> timestamp -> snapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string]map[time.Time]types.SessionSnapshot)}
}

func (m *Memory) PutResumeAnalysis(_ context.Context, userName, resumeText string, extracted []string, targetRole string, missing []string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	analysis := types.ResumeAnalysis{
		ID:              uuid.New(),
		UserName:        userName,
		ResumeText:      resumeText,
		ExtractedSkills: append([]string(nil), extracted...),
		TargetRole:      targetRole,
		MissingSkills:   append([]string(nil), missing...),
		CreatedAt:       time.Now().UTC(),
	}
	m.analyses = append(m.analyses, analysis)
	return analysis.ID, nil
}

func (m *Memory) LatestMissingSkills(_ context.Context, userName, targetRole string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.analyses) - 1; i >= 0; i-- {
		a := m.analyses[i]
		if a.UserName != userName {
			continue
		}
		if targetRole != "" && a.TargetRole != targetRole {
			continue
		}
		return append([]string(nil), a.MissingSkills...), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) PutLearningPath(_ context.Context, name, targetRole string, skillRatings map[string]int) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratings := make(map[string]int, len(skillRatings))
	for k, v := range skillRatings {
		ratings[k] = v
	}
	path := types.LearningPath{
		ID:           uuid.New(),
		Name:         name,
		TargetRole:   targetRole,
		SkillRatings: ratings,
		CreatedAt:    time.Now().UTC(),
	}
	m.paths = append(m.paths, path)
	return path.ID, nil
}

func (m *Memory) LatestLearningFocus(_ context.Context, name string, maxRating int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.paths) - 1; i >= 0; i-- {
		if m.paths[i].Name == name {
			return lowRated(m.paths[i].SkillRatings, maxRating), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) PutSessionSnapshot(_ context.Context, snap types.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	byTime := m.snapshots[snap.UserName]
	if byTime == nil {
		byTime = make(map[time.Time]types.SessionSnapshot)
		m.snapshots[snap.UserName] = byTime
	}
	byTime[snap.Timestamp] = snap
	return nil
}

func (m *Memory) RecentSessionSnapshots(_ context.Context, userName string, limit int) ([]types.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit < 1 || limit > maxRecentSnapshots {
		limit = maxRecentSnapshots
	}

	snaps := make([]types.SessionSnapshot, 0, len(m.snapshots[userName]))
	for _, snap := range m.snapshots[userName] {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	if len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

var _ Store = (*Memory)(nil)
