package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jordan/career-advisor/internal/advisor"
	"github.com/jordan/career-advisor/internal/analyzer"
	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/llm"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/plan"
	"github.com/jordan/career-advisor/internal/resumetext"
	"github.com/jordan/career-advisor/internal/search"
	"github.com/jordan/career-advisor/internal/server"
	"github.com/jordan/career-advisor/internal/store"
)

// searchDialTimeout bounds each HTTP round trip to the search provider.
const searchDialTimeout = 15 * time.Second

// app holds the wired component graph and its owned resources.
type app struct {
	cfg      *config.Config
	orch     *advisor.Orchestrator
	deps     server.Deps
	client   *llm.GeminiClient
	pool     *search.Pool
	database *store.PG // nil when running on the in-memory store
}

// buildApp wires the full component graph. When st is nil a PostgreSQL
// store is connected from cfg.
func buildApp(ctx context.Context, cfg *config.Config, st store.Store) (*app, error) {
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	a := &app{cfg: cfg}

	if st == nil {
		database, err := store.Connect(ctx, cfg.DatabaseURL, cfg.Pool)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		a.database = database
		st = database
	}

	client, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	a.client = client

	gateway := llm.NewGateway(client, cfg.LLM.Models, cfg.LLM.MaxRetriesPerModel)
	skills := analyzer.New(gateway)

	a.pool = search.NewPool(search.HTTPDialer(searchDialTimeout), cfg.Pool)
	courses := search.NewClient(cfg.Search, a.pool)

	formatter := plan.New(gateway)

	a.orch = advisor.New(advisor.Deps{
		Skills:  skills,
		Courses: courses,
		Plans:   formatter,
		Store:   st,
		LLM:     gateway,
	})

	a.deps = server.Deps{
		Extractor: resumetext.NewFileExtractor(),
		Skills:    skills,
		Courses:   courses,
		Plans:     formatter,
		Answerer:  a.orch,
		Store:     st,
	}
	return a, nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.database != nil {
		a.database.Close()
	}
}
