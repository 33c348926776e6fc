// Package gapwalker implements the client-side session that walks a user
// through each missing keyword: propose an insertion point, apply or skip,
// and track live coverage over the edited resume. All state lives in memory
// and is discarded on reset.
package gapwalker

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

// ErrInvalidTransition reports a session method called in the wrong state.
var ErrInvalidTransition = errors.New("invalid session transition")

// State is the walker's view, advanced strictly forward until reset.
type State string

const (
	StateInput      State = "input"
	StateAnalyzing  State = "analyzing"
	StateResults    State = "results"
	StateComparison State = "comparison"
)

// Impact selects where an accepted keyword lands in the resume.
type Impact string

const (
	ImpactHigh   Impact = "high"   // woven into an experience bullet
	ImpactMedium Impact = "medium" // synthesized summary sentence near the top
	ImpactLow    Impact = "low"    // skills line or new skills section
)

// Applied records one accepted keyword and where it went.
type Applied struct {
	Keyword  string `json:"keyword"`
	Impact   Impact `json:"impact"`
	Location string `json:"location"`
}

// Coverage is the live keyword match state over the edited text.
type Coverage struct {
	Matched []string `json:"matched"`
	Total   int      `json:"total"`
	Percent int      `json:"percent"`
}

// Session walks the missing keywords of one analysis. It is not safe for
// concurrent use; the walker is synchronous with respect to user input.
type Session struct {
	ID string

	state    State
	analysis domain.AnalysisResult
	original string
	text     string
	gapIndex int
	applied  []Applied
	roles    []Role
}

// NewSession returns a fresh session awaiting input.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), state: StateInput, applied: []Applied{}}
}

// State returns the current view.
func (s *Session) State() State { return s.state }

// Text returns the current edited resume text.
func (s *Session) Text() string { return s.text }

// OriginalText returns the resume as it was when analysis finished.
func (s *Session) OriginalText() string { return s.original }

// Roles returns the role lines extracted from the resume.
func (s *Session) Roles() []Role { return s.roles }

// AppliedKeywords returns the accepted keywords in application order.
func (s *Session) AppliedKeywords() []Applied { return s.applied }

// Analysis returns the analysis this session walks.
func (s *Session) Analysis() domain.AnalysisResult { return s.analysis }

// StartAnalysis moves input -> analyzing.
func (s *Session) StartAnalysis() error {
	if s.state != StateInput {
		return fmt.Errorf("%w: start analysis from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateAnalyzing
	return nil
}

// FinishAnalysis moves analyzing -> results, seeding the editable text and
// the extracted roles.
func (s *Session) FinishAnalysis(resume string, res domain.AnalysisResult) error {
	if s.state != StateAnalyzing {
		return fmt.Errorf("%w: finish analysis from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateResults
	s.analysis = res
	s.original = resume
	s.text = resume
	s.gapIndex = 0
	s.applied = []Applied{}
	s.roles = ExtractRoles(resume)
	return nil
}

// FailAnalysis moves analyzing back to input, discarding nothing but the
// transition itself; the caller keeps its own inputs.
func (s *Session) FailAnalysis() error {
	if s.state != StateAnalyzing {
		return fmt.Errorf("%w: fail analysis from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateInput
	return nil
}

// Compare moves results -> comparison once the walk is over.
func (s *Session) Compare() error {
	if s.state != StateResults {
		return fmt.Errorf("%w: compare from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateComparison
	return nil
}

// Reset discards all session state and returns to input.
func (s *Session) Reset() {
	*s = Session{ID: s.ID, state: StateInput, applied: []Applied{}}
}

// CurrentGap returns the gap under the cursor, or false when the walk is done.
func (s *Session) CurrentGap() (domain.Gap, bool) {
	missing := s.analysis.KeywordCoverage.MissingKeywords
	if s.state != StateResults || s.gapIndex >= len(missing) {
		return domain.Gap{}, false
	}
	return missing[s.gapIndex], true
}

// Done reports whether every gap has been applied or skipped.
func (s *Session) Done() bool {
	return s.gapIndex >= len(s.analysis.KeywordCoverage.MissingKeywords)
}

// Skip advances past the current gap without touching the text.
func (s *Session) Skip() {
	if !s.Done() {
		s.gapIndex++
	}
}

// Apply inserts the current gap's keyword at the given impact level, records
// the change, and advances the cursor.
func (s *Session) Apply(impact Impact) error {
	gap, ok := s.CurrentGap()
	if !ok {
		return fmt.Errorf("%w: apply with no gap under cursor", ErrInvalidTransition)
	}
	text, location := applyKeyword(s.text, gap.Keyword, impact)
	s.text = text
	s.applied = append(s.applied, Applied{Keyword: gap.Keyword, Impact: impact, Location: location})
	s.gapIndex++
	return nil
}

// Coverage recomputes the live match state. It is a pure function of the
// analysis keyword sets and the current text, so repeated calls without
// edits return the same result.
func (s *Session) Coverage() Coverage {
	lower := strings.ToLower(s.text)
	var matched []string
	count := func(keyword string) {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	for _, kw := range s.analysis.KeywordCoverage.MatchedKeywords {
		count(kw)
	}
	for _, g := range s.analysis.KeywordCoverage.MissingKeywords {
		count(g.Keyword)
	}
	total := s.analysis.TotalKeywords()
	c := Coverage{Matched: matched, Total: total}
	if total > 0 {
		c.Percent = int(math.Round(100 * float64(len(matched)) / float64(total)))
	}
	return c
}
