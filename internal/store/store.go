// Package store provides PostgreSQL persistence for resume analyses,
// learning paths, and session snapshots.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/types"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("store: not found")

// maxRecentSnapshots bounds any recent-snapshots query regardless of the
// caller's limit.
const maxRecentSnapshots = 20

//go:embed schema.sql
var schemaSQL string

// Store is the persistence surface the orchestrator and server depend on.
type Store interface {
	PutResumeAnalysis(ctx context.Context, userName, resumeText string, extracted []string, targetRole string, missing []string) (uuid.UUID, error)
	LatestMissingSkills(ctx context.Context, userName, targetRole string) ([]string, error)
	PutLearningPath(ctx context.Context, name, targetRole string, skillRatings map[string]int) (uuid.UUID, error)
	LatestLearningFocus(ctx context.Context, name string, maxRating int) ([]string, error)
	PutSessionSnapshot(ctx context.Context, snap types.SessionSnapshot) error
	RecentSessionSnapshots(ctx context.Context, userName string, limit int) ([]types.SessionSnapshot, error)
}

// PG implements Store over a PostgreSQL connection pool.
type PG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect establishes a connection pool sized per cfg and verifies it.
func Connect(ctx context.Context, databaseURL string, cfg config.PoolConfig) (*PG, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConnections)
	poolCfg.MaxConnLifetime = cfg.ConnectionTTL
	poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PG{pool: pool, log: logger.Component("session_store")}, nil
}

// Close closes the connection pool.
func (s *PG) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PG) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// PutResumeAnalysis stores one resume analysis and returns its id.
// Skill lists are stored as structured JSONB, never as joined strings.
func (s *PG) PutResumeAnalysis(ctx context.Context, userName, resumeText string, extracted []string, targetRole string, missing []string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO resume_analyses (user_name, resume_text, extracted_skills, target_role, missing_skills)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		userName, resumeText, extracted, targetRole, missing,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to store resume analysis: %w", err)
	}
	return id, nil
}

// LatestMissingSkills returns the missing-skills list of the newest analysis
// for the user, filtered by role when targetRole is non-empty. Returns
// ErrNotFound when the user has no matching analysis.
func (s *PG) LatestMissingSkills(ctx context.Context, userName, targetRole string) ([]string, error) {
	query := `SELECT missing_skills FROM resume_analyses WHERE user_name = $1`
	args := []any{userName}
	if targetRole != "" {
		query += ` AND target_role = $2`
		args = append(args, targetRole)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	var missing []string
	err := s.pool.QueryRow(ctx, query, args...).Scan(&missing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load missing skills: %w", err)
	}
	return missing, nil
}

// PutLearningPath stores one learning path and returns its id.
func (s *PG) PutLearningPath(ctx context.Context, name, targetRole string, skillRatings map[string]int) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO learning_paths (name, target_role, skill_ratings)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		name, targetRole, skillRatings,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to store learning path: %w", err)
	}
	return id, nil
}

// LatestLearningFocus returns the skills rated at or below maxRating in
// the user's newest learning path, in skill-name order. Returns
// ErrNotFound when the user has no learning path.
func (s *PG) LatestLearningFocus(ctx context.Context, name string, maxRating int) ([]string, error) {
	var ratings map[string]int
	err := s.pool.QueryRow(ctx,
		`SELECT skill_ratings FROM learning_paths WHERE name = $1
		 ORDER BY created_at DESC LIMIT 1`,
		name,
	).Scan(&ratings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load learning path: %w", err)
	}
	return lowRated(ratings, maxRating), nil
}

// lowRated selects the skills rated at or below max, sorted by name so
// the result is stable across the map's iteration order.
func lowRated(ratings map[string]int, max int) []string {
	var focus []string
	for skill, rating := range ratings {
		if rating <= max {
			focus = append(focus, skill)
		}
	}
	sort.Strings(focus)
	return focus
}

// PutSessionSnapshot stores one session snapshot. Writes are
// last-writer-wins per (user_name, timestamp).
func (s *PG) PutSessionSnapshot(ctx context.Context, snap types.SessionSnapshot) error {
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_snapshots (user_name, session_state, snapshot_at, source_page, role)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_name, snapshot_at)
		 DO UPDATE SET session_state = $2, source_page = $4, role = $5`,
		snap.UserName, snap.State, ts, snap.SourcePage, snap.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to store session snapshot: %w", err)
	}
	return nil
}

// RecentSessionSnapshots returns up to limit snapshots for the user,
// newest first. Limits outside [1, 20] are clamped.
func (s *PG) RecentSessionSnapshots(ctx context.Context, userName string, limit int) ([]types.SessionSnapshot, error) {
	if limit < 1 || limit > maxRecentSnapshots {
		limit = maxRecentSnapshots
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_name, session_state, snapshot_at, source_page, role
		 FROM session_snapshots WHERE user_name = $1
		 ORDER BY snapshot_at DESC LIMIT $2`,
		userName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list session snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []types.SessionSnapshot
	for rows.Next() {
		var snap types.SessionSnapshot
		if err := rows.Scan(&snap.UserName, &snap.State, &snap.Timestamp, &snap.SourcePage, &snap.Role); err != nil {
			return nil, fmt.Errorf("failed to scan session snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session snapshots: %w", err)
	}
	return snaps, nil
}
