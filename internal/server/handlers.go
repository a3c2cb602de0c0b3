package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jordan/career-advisor/internal/courses"
	"github.com/jordan/career-advisor/internal/llm"
	"github.com/jordan/career-advisor/internal/plan"
	"github.com/jordan/career-advisor/internal/resumetext"
	"github.com/jordan/career-advisor/internal/store"
	"github.com/jordan/career-advisor/internal/types"
)

// maxUploadBytes bounds resume uploads.
const maxUploadBytes = 10 << 20

// lowRatingThreshold marks stored skill ratings that bias course search.
const lowRatingThreshold = 2

// User-safe messages. Raw errors are logged, never returned.
const (
	msgAnalysisUnavailable = "We're having trouble analyzing that right now. Please try again shortly."
	msgSearchUnavailable   = "Course search is unavailable right now. Please try again shortly."
	msgStoreUnavailable    = "We couldn't save that right now. Please try again shortly."
	msgNoAnalysis          = "No resume analysis found for this user. Submit a resume analysis first."
	msgUnsupportedUpload   = "Unsupported file type. Please upload a .pdf or .docx resume."
	msgExtractionFailed    = "We couldn't read that file. Please check it and try again."
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResumeExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgExtractionFailed)
		return
	}

	text, err := s.deps.Extractor.Extract(header.Filename, data)
	if err != nil {
		if errors.Is(err, resumetext.ErrUnsupportedFormat) {
			s.errorResponse(w, http.StatusBadRequest, msgUnsupportedUpload)
			return
		}
		s.log.Warn().Err(err).Str("filename", header.Filename).Msg("resume extraction failed")
		s.errorResponse(w, http.StatusBadRequest, msgExtractionFailed)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"text":    text,
		"message": "",
	})
}

type skillsExtractRequest struct {
	ResumeText string `json:"resume_text" validate:"required,min=50"`
}

func (s *Server) handleSkillsExtract(w http.ResponseWriter, r *http.Request) {
	var req skillsExtractRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	skills, err := s.deps.Skills.ExtractSkills(r.Context(), req.ResumeText)
	if err != nil {
		s.log.Warn().Err(err).Msg("skill extraction failed")
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"success": false,
			"skills":  []string{},
			"message": msgAnalysisUnavailable,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"skills":  skills,
		"message": "",
	})
}

type skillsMissingRequest struct {
	ExtractedSkills []string `json:"extracted_skills"`
	TargetRole      string   `json:"target_role" validate:"required"`
}

func (s *Server) handleSkillsMissing(w http.ResponseWriter, r *http.Request) {
	var req skillsMissingRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	gap := s.deps.Skills.AnalyzeGap(r.Context(), req.ExtractedSkills, req.TargetRole)
	if gap.Unavailable() {
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"success":        false,
			"missing_skills": []string{},
			"message":        msgAnalysisUnavailable,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":        true,
		"missing_skills": gap.Missing,
		"message":        "",
	})
}

func (s *Server) handleTopSkills(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")

	skills, err := s.deps.Skills.TopSkillsForRole(r.Context(), role)
	if err != nil {
		s.log.Warn().Err(err).Str("role", role).Msg("top skills lookup failed")
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"success": false,
			"role":    role,
			"skills":  []string{},
			"message": msgAnalysisUnavailable,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"role":    role,
		"skills":  skills,
	})
}

type storeAnalysisRequest struct {
	Username        string   `json:"username" validate:"required"`
	ResumeText      string   `json:"resume_text" validate:"required"`
	ExtractedSkills []string `json:"extracted_skills"`
	TargetRole      string   `json:"target_role" validate:"required"`
	MissingSkills   []string `json:"missing_skills"`
}

func (s *Server) handleStoreAnalysis(w http.ResponseWriter, r *http.Request) {
	var req storeAnalysisRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	id, err := s.deps.Store.PutResumeAnalysis(r.Context(), req.Username, req.ResumeText, req.ExtractedSkills, req.TargetRole, req.MissingSkills)
	if err != nil {
		s.log.Error().Err(err).Str("user_name", req.Username).Msg("failed to store resume analysis")
		s.errorResponse(w, http.StatusServiceUnavailable, msgStoreUnavailable)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"resume_id": id.String(),
		"message":   "Analysis stored",
	})
}

type careerCoursesRequest struct {
	TargetRole    string   `json:"target_role" validate:"required"`
	MissingSkills []string `json:"missing_skills"`
	Limit         int      `json:"limit" validate:"omitempty,min=1,max=20"`
}

func (s *Server) handleCareerCourses(w http.ResponseWriter, r *http.Request) {
	var req careerCoursesRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	s.respondCourses(w, r, req.TargetRole, req.MissingSkills, req.Limit)
}

type resumeCoursesRequest struct {
	Username   string `json:"username" validate:"required"`
	TargetRole string `json:"target_role"`
	Limit      int    `json:"limit" validate:"omitempty,min=1,max=20"`
}

func (s *Server) handleResumeCourses(w http.ResponseWriter, r *http.Request) {
	var req resumeCoursesRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	missing, err := s.deps.Store.LatestMissingSkills(r.Context(), req.Username, req.TargetRole)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.jsonResponse(w, http.StatusOK, map[string]any{
				"success": false,
				"courses": []types.Course{},
				"count":   0,
				"message": msgNoAnalysis,
			})
			return
		}
		s.log.Error().Err(err).Str("user_name", req.Username).Msg("failed to load missing skills")
		s.errorResponse(w, http.StatusServiceUnavailable, msgStoreUnavailable)
		return
	}

	s.respondCourses(w, r, req.TargetRole, missing, req.Limit)
}

type coursesRequest struct {
	Role   string `json:"role" validate:"required"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=20"`
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	var req coursesRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	var focus []string
	if req.UserID != "" {
		stored, err := s.deps.Store.LatestLearningFocus(r.Context(), req.UserID, lowRatingThreshold)
		switch {
		case err == nil:
			focus = stored
		case errors.Is(err, store.ErrNotFound):
			// No learning path yet; search unbiased.
		default:
			s.log.Warn().Err(err).Str("user_name", req.UserID).Msg("failed to load learning focus")
		}
	}
	s.respondCourses(w, r, req.Role, focus, req.Limit)
}

// respondCourses runs the search pipeline shared by the course endpoints.
// Marker entries never reach the search query.
func (s *Server) respondCourses(w http.ResponseWriter, r *http.Request, role string, focus []string, limit int) {
	var clean []string
	for _, skill := range focus {
		if !llm.IsUnavailable(skill) {
			clean = append(clean, skill)
		}
	}

	found, err := s.deps.Courses.Search(r.Context(), role, clean, limit)
	if err != nil {
		s.log.Warn().Err(err).Str("role", role).Msg("course search failed")
		s.errorResponse(w, http.StatusServiceUnavailable, msgSearchUnavailable)
		return
	}
	found = courses.Redistribute(found)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"courses": found,
		"count":   len(found),
		"message": "",
	})
}

type transitionPlanRequest struct {
	Username      string         `json:"username" validate:"required"`
	CurrentSkills []string       `json:"current_skills"`
	TargetRole    string         `json:"target_role" validate:"required"`
	MissingSkills []string       `json:"missing_skills"`
	Courses       []types.Course `json:"courses"`
}

func (s *Server) handleTransitionPlan(w http.ResponseWriter, r *http.Request) {
	var req transitionPlanRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	p := s.deps.Plans.Build(r.Context(), plan.Input{
		Name:         req.Username,
		Role:         req.TargetRole,
		Extracted:    req.CurrentSkills,
		Transferable: req.CurrentSkills,
		Missing:      req.MissingSkills,
		Courses:      req.Courses,
	})

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":                true,
		"introduction":           p.Introduction,
		"skill_assessment":       p.SkillAssessment,
		"course_recommendations": p.CourseRecommendations,
		"career_advice":          p.CareerAdvice,
		"has_valid_courses":      p.HasValidCourses,
		"message":                "",
	})
}

type careerQuestionRequest struct {
	Question    string `json:"question" validate:"required"`
	UserContext string `json:"user_context"`
}

func (s *Server) handleCareerQuestion(w http.ResponseWriter, r *http.Request) {
	var req careerQuestionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	answer, err := s.deps.Answerer.Answer(r.Context(), req.Question, req.UserContext)
	if err != nil {
		s.log.Warn().Err(err).Msg("career question failed")
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"detail": msgAnalysisUnavailable,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": answer,
	})
}

type saveSessionStateRequest struct {
	UserName     string          `json:"user_name" validate:"required"`
	SessionState json.RawMessage `json:"session_state" validate:"required"`
	Timestamp    time.Time       `json:"timestamp"`
	SourcePage   string          `json:"source_page" validate:"required,oneof=learning_path career_transition"`
	Role         string          `json:"role"`
}

func (s *Server) handleSaveSessionState(w http.ResponseWriter, r *http.Request) {
	var req saveSessionStateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	err := s.deps.Store.PutSessionSnapshot(r.Context(), types.SessionSnapshot{
		UserName:   req.UserName,
		State:      req.SessionState,
		Timestamp:  req.Timestamp,
		SourcePage: req.SourcePage,
		Role:       req.Role,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_name", req.UserName).Msg("failed to save session state")
		s.errorResponse(w, http.StatusServiceUnavailable, msgStoreUnavailable)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message":     "Session state saved",
		"user_name":   req.UserName,
		"source_page": req.SourcePage,
		"target_role": req.Role,
	})
}

func (s *Server) handleRecentChatHistory(w http.ResponseWriter, r *http.Request) {
	userName := r.URL.Query().Get("user_name")
	if userName == "" {
		s.errorResponse(w, http.StatusBadRequest, "user_name is required")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 20")
			return
		}
		limit = parsed
	}

	snaps, err := s.deps.Store.RecentSessionSnapshots(r.Context(), userName, limit)
	if err != nil {
		s.log.Error().Err(err).Str("user_name", userName).Msg("failed to load chat history")
		s.errorResponse(w, http.StatusServiceUnavailable, msgStoreUnavailable)
		return
	}

	entries := make([]map[string]any, 0, len(snaps))
	for _, snap := range snaps {
		entries = append(entries, map[string]any{
			"session_state": json.RawMessage(snap.State),
			"timestamp":     snap.Timestamp,
			"source_page":   snap.SourcePage,
			"role":          snap.Role,
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"snapshots": entries,
		"count":     len(entries),
	})
}
