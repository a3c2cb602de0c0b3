// Package server exposes the advisory pipeline as a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jordan/career-advisor/internal/advisor"
	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/resumetext"
	"github.com/jordan/career-advisor/internal/server/ratelimit"
	"github.com/jordan/career-advisor/internal/store"
)

// QuestionAnswerer answers free-form career questions, surfacing gateway
// exhaustion as an error.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, userContext string) (string, error)
}

// Deps bundles the collaborators the handlers dispatch to.
type Deps struct {
	Extractor resumetext.Extractor
	Skills    advisor.SkillAnalyzer
	Courses   advisor.CourseSearcher
	Plans     advisor.PlanBuilder
	Answerer  QuestionAnswerer
	Store     store.Store
}

// Server is the HTTP front of the advisory service.
type Server struct {
	httpServer  *http.Server
	deps        Deps
	cfg         config.Config
	rateLimiter *ratelimit.Limiter
	log         zerolog.Logger
}

// New wires the routes and middleware. It does not start listening.
func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		deps:        deps,
		cfg:         cfg,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		log:         logger.Component("api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /resume/extract", s.handleResumeExtract)
	mux.HandleFunc("POST /skills/extract", s.handleSkillsExtract)
	mux.HandleFunc("POST /skills/missing", s.handleSkillsMissing)
	mux.HandleFunc("GET /skills/top/{role}", s.handleTopSkills)
	mux.HandleFunc("POST /career-analysis/store", s.handleStoreAnalysis)
	mux.HandleFunc("POST /career-courses", s.handleCareerCourses)
	mux.HandleFunc("POST /resume-courses", s.handleResumeCourses)
	mux.HandleFunc("POST /courses", s.handleCourses)
	mux.HandleFunc("POST /transition-plan", s.handleTransitionPlan)
	mux.HandleFunc("POST /career-question", s.handleCareerQuestion)
	mux.HandleFunc("POST /save-session-state", s.handleSaveSessionState)
	mux.HandleFunc("GET /chat-history/recent", s.handleRecentChatHistory)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // analysis endpoints walk the model ladder
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the full middleware chain, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.log.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(clientID(r), r.URL.Path) {
			s.errorResponse(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs one line per request with duration and status.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// clientID identifies a caller for rate limiting. X-Forwarded-For wins
// when present so limits hold behind a proxy.
func clientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
