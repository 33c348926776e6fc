package gapwalker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

const walkerResume = `Jane Doe
Senior Product Designer

PROFILE
Designing web products for eight years.

EXPERIENCE
- Led redesign of the checkout flow, raising conversion by 12%.
- Ran weekly user interviews and synthesized findings.

SKILLS
Sketch, HTML, CSS`

func walkerAnalysis() domain.AnalysisResult {
	return domain.AnalysisResult{
		OverallScore: 40,
		KeywordCoverage: domain.KeywordCoverage{
			MatchedKeywords: []string{"user interviews"},
			MissingKeywords: []domain.Gap{
				{Keyword: "Figma", Importance: domain.ImportanceHigh, Risk: domain.RiskLow, Points: 2},
				{Keyword: "usability testing", Importance: domain.ImportanceMedium, Risk: domain.RiskLow, Points: 2},
			},
		},
	}
}

func startedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	require.NoError(t, s.StartAnalysis())
	require.NoError(t, s.FinishAnalysis(walkerResume, walkerAnalysis()))
	return s
}

func TestSessionTransitions(t *testing.T) {
	s := NewSession()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StateInput, s.State())

	require.Error(t, s.Compare())
	require.Error(t, s.FinishAnalysis(walkerResume, walkerAnalysis()))

	require.NoError(t, s.StartAnalysis())
	assert.Equal(t, StateAnalyzing, s.State())
	require.ErrorIs(t, s.StartAnalysis(), ErrInvalidTransition)

	require.NoError(t, s.FinishAnalysis(walkerResume, walkerAnalysis()))
	assert.Equal(t, StateResults, s.State())
	assert.Equal(t, walkerResume, s.Text())

	require.NoError(t, s.Compare())
	assert.Equal(t, StateComparison, s.State())

	s.Reset()
	assert.Equal(t, StateInput, s.State())
	assert.Empty(t, s.Text())
}

func TestSessionFailAnalysisReturnsToInput(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.StartAnalysis())
	require.NoError(t, s.FailAnalysis())
	assert.Equal(t, StateInput, s.State())
}

func TestSessionWalkApplyAndSkip(t *testing.T) {
	s := startedSession(t)

	gap, ok := s.CurrentGap()
	require.True(t, ok)
	assert.Equal(t, "Figma", gap.Keyword)

	require.NoError(t, s.Apply(ImpactLow))
	assert.Contains(t, s.Text(), "Figma")

	gap, ok = s.CurrentGap()
	require.True(t, ok)
	assert.Equal(t, "usability testing", gap.Keyword)

	s.Skip()
	assert.True(t, s.Done())
	_, ok = s.CurrentGap()
	assert.False(t, ok)

	require.ErrorIs(t, s.Apply(ImpactLow), ErrInvalidTransition)

	applied := s.AppliedKeywords()
	require.Len(t, applied, 1)
	assert.Equal(t, "Figma", applied[0].Keyword)
	assert.Equal(t, ImpactLow, applied[0].Impact)
}

func TestSessionSkipDoesNotMutateText(t *testing.T) {
	s := startedSession(t)
	before := s.Text()
	s.Skip()
	assert.Equal(t, before, s.Text())
}

func TestApplyHighWeavesIntoBulletLine(t *testing.T) {
	s := startedSession(t)
	require.NoError(t, s.Apply(ImpactHigh))

	lines := strings.Split(s.Text(), "\n")
	var hit string
	for _, l := range lines {
		if strings.Contains(l, ", incorporating Figma") {
			hit = l
			break
		}
	}
	require.NotEmpty(t, hit)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(hit), "-"))
	// Clause lands before the trailing period.
	assert.True(t, strings.HasSuffix(hit, ", incorporating Figma."))
}

func TestApplyMediumInsertsSummarySentence(t *testing.T) {
	s := startedSession(t)
	require.NoError(t, s.Apply(ImpactMedium))

	lines := strings.Split(s.Text(), "\n")
	require.Greater(t, len(lines), 3)
	assert.Contains(t, lines[3], "Figma")
}

func TestApplyLowAppendsToSkillsLine(t *testing.T) {
	s := startedSession(t)
	require.NoError(t, s.Apply(ImpactLow))
	assert.Contains(t, s.Text(), "Sketch, HTML, CSS, Figma")
}

func TestApplyLowCreatesSkillsSection(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.StartAnalysis())
	require.NoError(t, s.FinishAnalysis("Jane Doe\nProduct designer.", walkerAnalysis()))
	require.NoError(t, s.Apply(ImpactLow))
	assert.True(t, strings.HasSuffix(s.Text(), "SKILLS:\nFigma"))
}

func TestCoverageRecomputesAndIsIdempotent(t *testing.T) {
	s := startedSession(t)

	c := s.Coverage()
	assert.Equal(t, 3, c.Total)
	assert.Equal(t, []string{"user interviews"}, c.Matched)
	assert.Equal(t, 33, c.Percent)

	require.NoError(t, s.Apply(ImpactLow)) // Figma
	c = s.Coverage()
	assert.Equal(t, 67, c.Percent)
	assert.Len(t, c.Matched, 2)

	// No edits between calls: identical result.
	assert.Equal(t, c, s.Coverage())
}

func TestExtractRoles(t *testing.T) {
	roles := ExtractRoles(walkerResume)
	require.Len(t, roles, 1)
	assert.Equal(t, "Senior Product Designer", roles[0].Title)
	assert.Equal(t, 1, roles[0].Line)
}

func TestExtractRolesIgnoresBulletsAndLongLines(t *testing.T) {
	text := "- Led a team of engineers\n" + strings.Repeat("engineer ", 15) + "\nStaff Engineer"
	roles := ExtractRoles(text)
	require.Len(t, roles, 1)
	assert.Equal(t, "Staff Engineer", roles[0].Title)
}
