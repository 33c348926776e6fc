// Package usecase contains the scoring and rewrite pipelines.
package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/tailorhq/resume-tailor/internal/adapter/ai"
	"github.com/tailorhq/resume-tailor/internal/adapter/ai/tokencount"
	"github.com/tailorhq/resume-tailor/internal/adapter/observability"
	"github.com/tailorhq/resume-tailor/internal/config"
	"github.com/tailorhq/resume-tailor/internal/domain"
	"github.com/tailorhq/resume-tailor/internal/riskrules"
)

// MinJobDescriptionLen rejects job descriptions too short to extract a
// meaningful keyword set from.
const MinJobDescriptionLen = 200

// rawSnippetLimit bounds how much of an unparseable model response is logged.
const rawSnippetLimit = 2000

// AnalyzeService runs the scoring pipeline: prompt, one gateway call, clean,
// parse, normalize.
type AnalyzeService struct {
	AI  domain.AIClient
	Cfg config.Config
}

// NewAnalyzeService constructs an AnalyzeService.
func NewAnalyzeService(client domain.AIClient, cfg config.Config) AnalyzeService {
	return AnalyzeService{AI: client, Cfg: cfg}
}

// rawAnalysis mirrors the model output loosely. missing_keywords entries may
// be bare strings or objects, so they stay raw until normalization.
type rawAnalysis struct {
	OverallScore    float64 `json:"overall_score"`
	KeywordCoverage struct {
		Score           float64           `json:"score"`
		MatchedKeywords []json.RawMessage `json:"matched_keywords"`
		MissingKeywords []json.RawMessage `json:"missing_keywords"`
	} `json:"keyword_coverage"`
	LanguageAlignment struct {
		Score float64 `json:"score"`
	} `json:"language_alignment"`
	Telemetry map[string]any `json:"telemetry"`
}

type rawGap struct {
	Keyword    string   `json:"keyword"`
	Importance string   `json:"importance"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
	JDQuote    string   `json:"jd_quote"`
}

// Analyze scores resume against jobDescription and returns a fully normalized
// result. Both inputs must be non-empty; the job description must be at least
// MinJobDescriptionLen characters.
func (s AnalyzeService) Analyze(ctx domain.Context, jobDescription, resume string) (domain.AnalysisResult, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	resume = strings.TrimSpace(resume)
	if jobDescription == "" || resume == "" {
		return domain.AnalysisResult{}, fmt.Errorf("%w: jobDescription and resume are required", domain.ErrMissingInput)
	}
	if len(jobDescription) < MinJobDescriptionLen {
		return domain.AnalysisResult{}, fmt.Errorf("%w: jobDescription must be at least %d characters", domain.ErrBadRequest, MinJobDescriptionLen)
	}

	schema := domain.GapSchema(s.Cfg.GapSchema)
	prompt := ai.BuildScorerPrompt(jobDescription, resume, schema)
	resp, err := s.AI.ChatJSON(ctx, domain.ChatRequest{
		Prompt:      prompt,
		Model:       s.Cfg.OpenAIModel,
		Temperature: s.Cfg.ScorerTemperature,
		MaxTokens:   s.Cfg.ScorerMaxTokens,
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	cleaned := ai.CleanJSONResponse(resp.Content)
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		slog.Warn("scorer output is not valid json",
			slog.Any("error", err),
			slog.String("raw", ai.Snippet(resp.Content, rawSnippetLimit)))
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrNonJSONResponse, err)
	}

	result := s.normalize(raw, schema)
	result.Telemetry = s.telemetry(raw.Telemetry, resp, prompt)

	observability.OverallScoreHistogram.Observe(float64(result.OverallScore))
	slog.Info("analysis complete",
		slog.Int("overall_score", result.OverallScore),
		slog.Int("matched", len(result.KeywordCoverage.MatchedKeywords)),
		slog.Int("missing", len(result.KeywordCoverage.MissingKeywords)),
		slog.String("schema", string(schema)))
	return result, nil
}

// normalize enforces every result invariant: deduped keyword sets, fully
// populated gaps under the active schema, recomputed scores.
func (s AnalyzeService) normalize(raw rawAnalysis, schema domain.GapSchema) domain.AnalysisResult {
	matched := make([]string, 0, len(raw.KeywordCoverage.MatchedKeywords))
	matchedSet := make(map[string]struct{})
	for _, rm := range raw.KeywordCoverage.MatchedKeywords {
		kw := keywordFromEntry(rm)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if _, dup := matchedSet[lower]; dup {
			continue
		}
		matchedSet[lower] = struct{}{}
		matched = append(matched, kw)
	}

	missing := make([]domain.Gap, 0, len(raw.KeywordCoverage.MissingKeywords))
	missingSet := make(map[string]struct{})
	for _, rm := range raw.KeywordCoverage.MissingKeywords {
		gap, ok := gapFromEntry(rm)
		if !ok {
			continue
		}
		lower := strings.ToLower(gap.Keyword)
		// A phrase the model also reported as matched is not a gap.
		if _, clash := matchedSet[lower]; clash {
			continue
		}
		if _, dup := missingSet[lower]; dup {
			continue
		}
		missingSet[lower] = struct{}{}
		missing = append(missing, normalizeGap(gap, schema))
	}

	result := domain.AnalysisResult{
		KeywordCoverage: domain.KeywordCoverage{
			MatchedKeywords: matched,
			MissingKeywords: missing,
		},
		LanguageAlignment: domain.LanguageAlignment{
			Score: clampFloat(raw.LanguageAlignment.Score, 0, 50),
		},
	}

	if total := result.TotalKeywords(); total > 0 {
		m := float64(len(matched))
		t := float64(total)
		result.OverallScore = int(math.Round(100 * m / t))
		result.KeywordCoverage.Score = int(math.Round(50 * m / t))
	} else {
		result.OverallScore = clampInt(int(math.Round(raw.OverallScore)), 0, 100)
		result.KeywordCoverage.Score = clampInt(int(math.Round(raw.KeywordCoverage.Score)), 0, 50)
	}
	return result
}

// keywordFromEntry accepts a bare string or an object with a "keyword" field.
func keywordFromEntry(rm json.RawMessage) string {
	var s string
	if err := json.Unmarshal(rm, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var g rawGap
	if err := json.Unmarshal(rm, &g); err == nil {
		return strings.TrimSpace(g.Keyword)
	}
	return ""
}

// gapFromEntry extracts a Gap from a bare string or an object entry.
func gapFromEntry(rm json.RawMessage) (rawGap, bool) {
	var s string
	if err := json.Unmarshal(rm, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return rawGap{}, false
		}
		return rawGap{Keyword: s}, true
	}
	var g rawGap
	if err := json.Unmarshal(rm, &g); err != nil {
		return rawGap{}, false
	}
	g.Keyword = strings.TrimSpace(g.Keyword)
	if g.Keyword == "" {
		return rawGap{}, false
	}
	return g, true
}

// normalizeGap fully populates a gap under the active schema. Risk and points
// are never trusted from the model; the confidence triple is clamped and
// padded instead.
func normalizeGap(g rawGap, schema domain.GapSchema) domain.Gap {
	gap := domain.Gap{
		Keyword:    g.Keyword,
		Importance: normalizeImportance(g.Importance),
	}
	if schema == domain.SchemaConfidence {
		gap.Confidence = g.Confidence
		if gap.Confidence < 0.4 || gap.Confidence > 1.0 {
			gap.Confidence = 0.7
		}
		gap.Reasoning = normalizeReasoning(g.Reasoning)
		gap.JDQuote = normalizeJDQuote(g.JDQuote, g.Keyword)
		return gap
	}
	gap.Risk, gap.Points = riskrules.Classify(g.Keyword)
	return gap
}

func normalizeImportance(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case domain.ImportanceCritical:
		return domain.ImportanceCritical
	case domain.ImportanceHigh:
		return domain.ImportanceHigh
	default:
		return domain.ImportanceMedium
	}
}

// normalizeReasoning keeps 2 to 3 non-empty entries, padding with generic
// bullets when the model supplies fewer.
func normalizeReasoning(in []string) []string {
	out := make([]string, 0, 3)
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
		if len(out) == 3 {
			break
		}
	}
	generics := []string{
		"listed as a requirement in the job description",
		"no equivalent phrase found in the resume",
	}
	for _, g := range generics {
		if len(out) >= 2 {
			break
		}
		out = append(out, g)
	}
	return out
}

const jdQuoteLimit = 200

func normalizeJDQuote(quote, keyword string) string {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return "the job description mentions " + keyword
	}
	// The ellipsis counts against the limit so the final string never
	// exceeds it.
	if len(quote) > jdQuoteLimit {
		return ai.Snippet(quote, jdQuoteLimit-3) + "..."
	}
	return quote
}

// telemetry merges model-emitted telemetry with generated fields; generated
// values win for the required keys. Token counts fall back to a local
// tiktoken estimate when the provider omits usage.
func (s AnalyzeService) telemetry(modelEmitted map[string]any, resp domain.ChatResponse, prompt string) map[string]any {
	t := make(map[string]any, len(modelEmitted)+4)
	for k, v := range modelEmitted {
		t[k] = v
	}
	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		est := tokencount.EstimateUsageDefault(prompt, resp.Content, resp.Model)
		tokens = est.TotalTokens
		t["tokens_estimated"] = true
	}
	t["tokens_used"] = tokens
	t["model"] = resp.Model
	t["temperature"] = s.Cfg.ScorerTemperature
	return t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
