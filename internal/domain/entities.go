// Package domain holds the core entities and ports of the resume tailoring
// service. It has no dependencies on adapters or frameworks.
package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMissingInput     = errors.New("missing input")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrServerMisconfig  = errors.New("server misconfigured")
	ErrUpstream         = errors.New("llm upstream error")
	ErrUpstreamTimeout  = errors.New("llm upstream timeout")
	ErrNonJSONResponse  = errors.New("non-json response")
	ErrInternal         = errors.New("internal error")
)

// GapSchema selects which evidentiary schema the analysis pipeline emits.
// Exactly one is active per deployment; the normalizer fully populates
// whichever is selected and never leaves a Gap partially filled.
type GapSchema string

const (
	SchemaRisk       GapSchema = "risk"
	SchemaConfidence GapSchema = "confidence"
)

// Importance levels for a missing keyword.
const (
	ImportanceCritical = "critical"
	ImportanceHigh     = "high"
	ImportanceMedium   = "medium"
)

// Risk levels for a missing keyword under SchemaRisk.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Gap is one keyword present in the job description but absent from the
// resume. Under SchemaRisk the Risk/Points pair is populated; under
// SchemaConfidence the Confidence/Reasoning/JDQuote triple is.
type Gap struct {
	Keyword    string   `json:"keyword"`
	Importance string   `json:"importance"`
	Risk       string   `json:"risk,omitempty"`
	Points     int      `json:"points,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Reasoning  []string `json:"reasoning,omitempty"`
	JDQuote    string   `json:"jd_quote,omitempty"`
}

// KeywordCoverage groups matched and missing keywords plus a half-scale score.
type KeywordCoverage struct {
	Score           int      `json:"score"` // 0-50
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []Gap    `json:"missing_keywords"`
}

// LanguageAlignment mirrors the model's 0-50 language sub-score.
type LanguageAlignment struct {
	Score float64 `json:"score"`
}

// AnalysisResult is the fully normalized output of the scoring pipeline.
// Invariants: 0 <= OverallScore <= 100; MatchedKeywords and MissingKeywords
// never share a phrase; every Gap carries risk or confidence, never neither.
type AnalysisResult struct {
	OverallScore      int               `json:"overall_score"`
	KeywordCoverage   KeywordCoverage   `json:"keyword_coverage"`
	LanguageAlignment LanguageAlignment `json:"language_alignment"`
	Telemetry         map[string]any    `json:"telemetry,omitempty"`
}

// TotalKeywords returns |matched| + |missing|.
func (a AnalysisResult) TotalKeywords() int {
	return len(a.KeywordCoverage.MatchedKeywords) + len(a.KeywordCoverage.MissingKeywords)
}

// Change records one edit the rewrite pipeline made to the resume.
type Change struct {
	Keyword  string `json:"keyword"`
	Location string `json:"location"`
	Before   string `json:"before,omitempty"`
	After    string `json:"after,omitempty"`
}

// RewriteResult is the output of the rewrite pipeline.
// Text is never empty: it defaults to the original resume on any failure.
// Changes is never nil (an empty slice is allowed).
type RewriteResult struct {
	Text     string   `json:"text"`
	Changes  []Change `json:"changes"`
	NewScore int      `json:"newScore"`
}

// ChatRequest describes a single chat-completion round trip.
type ChatRequest struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatUsage carries provider-reported token usage, zero when omitted.
type ChatUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the raw model output plus response metadata.
type ChatResponse struct {
	Content string
	Model   string
	Usage   ChatUsage
}

// AIClient (port): exactly one round trip to a chat-completion provider per
// call. Implementations must not retry; callers own fallback decisions.
type AIClient interface {
	ChatJSON(ctx Context, req ChatRequest) (ChatResponse, error)
}

// Context is an alias so adapters and usecases share the std context without
// the domain package naming it everywhere.
type Context = context.Context
