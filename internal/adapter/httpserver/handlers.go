package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tailorhq/resume-tailor/internal/config"
	"github.com/tailorhq/resume-tailor/internal/domain"
	"github.com/tailorhq/resume-tailor/internal/usecase"
)

// maxJSONBody caps request bodies on the JSON endpoints.
const maxJSONBody = 1 << 20 // 1MB

// Server wires the usecase services into HTTP handlers.
type Server struct {
	Cfg     config.Config
	Analyze usecase.AnalyzeService
	Rewrite usecase.RewriteService
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, analyze usecase.AnalyzeService, rewrite usecase.RewriteService) *Server {
	return &Server{Cfg: cfg, Analyze: analyze, Rewrite: rewrite}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// decodeAndValidate decodes a capped JSON body into req and runs struct
// validation. Malformed JSON maps to BAD_REQUEST; a failed required tag maps
// to MISSING_INPUT.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json body", domain.ErrBadRequest), nil)
		return false
	}
	if err := getValidator().Struct(req); err != nil {
		verrs := map[string]string{}
		missing := false
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
				if fe.Tag() == "required" {
					missing = true
				}
			}
		}
		sentinel := domain.ErrBadRequest
		if missing {
			sentinel = domain.ErrMissingInput
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", sentinel), verrs)
		return false
	}
	return true
}

// ScoreHandler runs the scoring pipeline for a resume and job description.
func (s *Server) ScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Resume         string `json:"resume" validate:"required"`
			JobDescription string `json:"jobDescription" validate:"required"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}
		result, err := s.Analyze.Analyze(r.Context(), req.JobDescription, req.Resume)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// RewriteHandler runs the rewrite pipeline. analysis and selectedGaps are
// optional; without either the resume is returned unchanged. Extra selected
// gaps beyond the writer cap are truncated, not rejected.
func (s *Server) RewriteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Resume         string                 `json:"resume" validate:"required"`
			JobDescription string                 `json:"jobDescription" validate:"required"`
			Analysis       *domain.AnalysisResult `json:"analysis"`
			SelectedGaps   []string               `json:"selectedGaps"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}
		result, err := s.Rewrite.Rewrite(r.Context(), req.JobDescription, req.Resume, req.Analysis, req.SelectedGaps)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// readinessCheck is one named probe result.
type readinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

// ReadyzHandler reports whether the service can take traffic. The only hard
// dependency is the provider credential; everything else degrades.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		checks := []readinessCheck{
			{Name: "llm_config", OK: s.Cfg.OpenAIAPIKey != "", Details: detailIf(s.Cfg.OpenAIAPIKey == "", "OPENAI_API_KEY not set")},
			{Name: "gap_schema", OK: true, Details: s.Cfg.GapSchema},
		}
		status := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				status = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}

func detailIf(cond bool, msg string) string {
	if cond {
		return msg
	}
	return ""
}

// MethodNotAllowedHandler keeps 405 responses inside the error envelope.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, fmt.Errorf("%w: %s not supported on %s", domain.ErrMethodNotAllowed, r.Method, r.URL.Path), nil)
	}
}
