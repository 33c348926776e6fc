package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tailorhq/resume-tailor/internal/adapter/ai"
	"github.com/tailorhq/resume-tailor/internal/adapter/observability"
	"github.com/tailorhq/resume-tailor/internal/config"
	"github.com/tailorhq/resume-tailor/internal/domain"
)

// defaultPriorScore stands in when the caller supplies no prior analysis.
const defaultPriorScore = 60

// minRewriteLen guards against truncated model output. Anything shorter is
// replaced by the original resume with a note appended.
const minRewriteLen = 100

// RewriteService runs the rewrite pipeline. It degrades deterministically:
// the returned text is never empty and changes is never nil, whatever the
// model does.
type RewriteService struct {
	AI  domain.AIClient
	Cfg config.Config
}

// NewRewriteService constructs a RewriteService.
func NewRewriteService(client domain.AIClient, cfg config.Config) RewriteService {
	return RewriteService{AI: client, Cfg: cfg}
}

// rawRewrite mirrors the writer model output.
type rawRewrite struct {
	Text     string          `json:"text"`
	NewScore float64         `json:"newScore"`
	Changes  []domain.Change `json:"changes"`
}

// Rewrite produces a modified resume targeting the selected keywords. When
// selected is empty the missing keywords from analysis are used; when neither
// yields a keyword the original resume is returned without an LLM call.
func (s RewriteService) Rewrite(ctx domain.Context, jobDescription, resume string, analysis *domain.AnalysisResult, selected []string) (domain.RewriteResult, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	resume = strings.TrimSpace(resume)
	if jobDescription == "" || resume == "" {
		return domain.RewriteResult{}, fmt.Errorf("%w: jobDescription and resume are required", domain.ErrMissingInput)
	}

	prior := defaultPriorScore
	if analysis != nil && analysis.OverallScore > 0 {
		prior = analysis.OverallScore
	}

	keywords := targetKeywords(analysis, selected)
	if len(keywords) == 0 {
		return domain.RewriteResult{
			Text: resume,
			Changes: []domain.Change{{
				Location: "document",
				After:    "no changes needed; resume already covers the targeted keywords",
			}},
			NewScore: clampInt(prior+5, 0, 100),
		}, nil
	}

	prompt := ai.BuildWriterPrompt(jobDescription, resume, keywords)
	resp, err := s.AI.ChatJSON(ctx, domain.ChatRequest{
		Prompt:      prompt,
		Model:       s.Cfg.OpenAIModel,
		Temperature: s.Cfg.WriterTemperature,
		MaxTokens:   s.Cfg.WriterMaxTokens,
	})
	if err != nil {
		return domain.RewriteResult{}, err
	}

	cleaned := ai.CleanJSONResponse(resp.Content)
	var raw rawRewrite
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil || strings.TrimSpace(raw.Text) == "" {
		slog.Warn("writer output unusable, applying fallback patch",
			slog.Any("error", err),
			slog.Int("keywords", len(keywords)),
			slog.String("raw", ai.Snippet(resp.Content, rawSnippetLimit)))
		observability.RewriteFallbacksTotal.Inc()
		return fallbackPatch(resume, keywords, prior), nil
	}

	result := domain.RewriteResult{
		Text:     strings.TrimSpace(raw.Text),
		Changes:  raw.Changes,
		NewScore: int(raw.NewScore),
	}
	if len(result.Text) < minRewriteLen && len(result.Text) < len(resume) {
		slog.Warn("writer output suspiciously short, keeping original",
			slog.Int("rewrite_len", len(result.Text)), slog.Int("resume_len", len(resume)))
		result.Text = resume + "\n\nNote: consider adding: " + strings.Join(keywords, ", ")
		result.Changes = []domain.Change{{
			Location: "end of document",
			After:    "appended keyword note; model rewrite was discarded as truncated",
		}}
	}
	if result.Changes == nil {
		result.Changes = []domain.Change{}
	}
	if result.NewScore == 0 {
		result.NewScore = prior + 15
	}
	result.NewScore = clampInt(result.NewScore, 0, 100)
	return result, nil
}

// targetKeywords prefers the caller's selection, falling back to the missing
// keywords of the prior analysis. Duplicates and blanks are dropped, order
// preserved.
func targetKeywords(analysis *domain.AnalysisResult, selected []string) []string {
	src := selected
	if len(src) == 0 && analysis != nil {
		for _, g := range analysis.KeywordCoverage.MissingKeywords {
			src = append(src, g.Keyword)
		}
	}
	seen := make(map[string]struct{}, len(src))
	out := make([]string, 0, len(src))
	for _, kw := range src {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, kw)
		if len(out) == ai.MaxWriterKeywords {
			break
		}
	}
	return out
}

// fallbackPatch inserts the keywords near an existing skills line, or appends
// a new SKILLS section when none exists.
func fallbackPatch(resume string, keywords []string, prior int) domain.RewriteResult {
	joined := strings.Join(keywords, ", ")
	lines := strings.Split(resume, "\n")

	skillsIdx := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "skills") {
			skillsIdx = i
			break
		}
	}

	var text, location string
	switch {
	case skillsIdx >= 0 && skillsIdx < len(lines)-1:
		patched := make([]string, 0, len(lines)+1)
		patched = append(patched, lines[:skillsIdx+1]...)
		patched = append(patched, joined)
		patched = append(patched, lines[skillsIdx+1:]...)
		text = strings.Join(patched, "\n")
		location = "after skills line"
	case skillsIdx >= 0:
		lines[skillsIdx] = lines[skillsIdx] + " " + joined
		text = strings.Join(lines, "\n")
		location = "end of skills line"
	default:
		text = resume + "\n\nSKILLS:\n" + joined
		location = "new skills section"
	}

	return domain.RewriteResult{
		Text: text,
		Changes: []domain.Change{{
			Keyword:  joined,
			Location: location,
			After:    joined,
		}},
		NewScore: clampInt(prior+15, 0, 100),
	}
}
