package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailorhq/resume-tailor/internal/adapter/ai/stub"
	"github.com/tailorhq/resume-tailor/internal/domain"
)

const sampleResume = `Jane Doe
Product designer with eight years of experience shipping web products.

EXPERIENCE
- Led redesign of the checkout flow, raising conversion by 12%.
- Ran weekly user interviews and synthesized findings for the team.

SKILLS
Sketch, HTML, CSS`

func analysisWithMissing(keywords ...string) *domain.AnalysisResult {
	gaps := make([]domain.Gap, 0, len(keywords))
	for _, k := range keywords {
		gaps = append(gaps, domain.Gap{Keyword: k, Importance: domain.ImportanceMedium})
	}
	return &domain.AnalysisResult{
		OverallScore: 55,
		KeywordCoverage: domain.KeywordCoverage{
			MissingKeywords: gaps,
		},
	}
}

func TestRewriteMissingInput(t *testing.T) {
	svc := NewRewriteService(stub.New(), testCfg("risk"))
	_, err := svc.Rewrite(context.Background(), "", sampleResume, nil, nil)
	require.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestRewriteNoKeywordsSkipsLLM(t *testing.T) {
	client := stub.New()
	svc := NewRewriteService(client, testCfg("risk"))

	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, client.Calls())
	assert.Equal(t, sampleResume, res.Text)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, 65, res.NewScore) // default prior 60 + 5
}

func TestRewriteNoKeywordsUsesPriorScore(t *testing.T) {
	svc := NewRewriteService(stub.New(), testCfg("risk"))
	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, &domain.AnalysisResult{OverallScore: 80}, nil)
	require.NoError(t, err)
	assert.Equal(t, 85, res.NewScore)
}

func TestRewriteHappyPath(t *testing.T) {
	rewritten := sampleResume + "\nFigma, usability testing"
	client := stub.New(`{"text":` + mustQuote(rewritten) + `,"newScore":82,"changes":[{"keyword":"Figma","location":"skills","before":"Sketch","after":"Sketch, Figma"}]}`)
	svc := NewRewriteService(client, testCfg("risk"))

	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, analysisWithMissing("Figma", "usability testing"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.Calls())
	assert.Equal(t, rewritten, res.Text)
	assert.Equal(t, 82, res.NewScore)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "Figma", res.Changes[0].Keyword)
}

func TestRewriteOmittedScoreDefaults(t *testing.T) {
	client := stub.New(`{"text":` + mustQuote(sampleResume+" updated") + `,"changes":[]}`)
	svc := NewRewriteService(client, testCfg("risk"))

	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, analysisWithMissing("Figma"), nil)
	require.NoError(t, err)
	assert.Equal(t, 70, res.NewScore) // prior 55 + 15
	assert.NotNil(t, res.Changes)
}

func TestRewriteFallbackAfterSkillsLine(t *testing.T) {
	client := stub.New("not json at all")
	svc := NewRewriteService(client, testCfg("risk"))

	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, analysisWithMissing("Figma", "user research"), nil)
	require.NoError(t, err)

	lines := strings.Split(res.Text, "\n")
	idx := -1
	for i, l := range lines {
		if l == "SKILLS" {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "Figma, user research", lines[idx+1])
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "after skills line", res.Changes[0].Location)
	assert.Equal(t, 70, res.NewScore) // prior 55 + 15
}

func TestRewriteFallbackNoSkillsSection(t *testing.T) {
	plain := "Jane Doe\nProduct designer.\n- Shipped the onboarding flow."
	svc := NewRewriteService(stub.New("{broken"), testCfg("risk"))

	res, err := svc.Rewrite(context.Background(), longJD(), plain, nil, []string{"Figma"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Text, "SKILLS:\nFigma"))
	assert.Equal(t, 75, res.NewScore) // default prior 60 + 15
}

func TestRewriteShortOutputKeepsOriginal(t *testing.T) {
	svc := NewRewriteService(stub.New(`{"text":"too short","newScore":90,"changes":[]}`), testCfg("risk"))

	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, nil, []string{"Figma"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, sampleResume))
	assert.Contains(t, res.Text, "Figma")
	require.Len(t, res.Changes, 1)
}

func TestRewriteSelectedGapsCappedAndDeduped(t *testing.T) {
	client := stub.New(`{"text":` + mustQuote(sampleResume+" updated") + `,"newScore":80,"changes":[]}`)
	svc := NewRewriteService(client, testCfg("risk"))

	selected := []string{"a", "A", "b", "c", "d", "e", "f", "g"}
	_, err := svc.Rewrite(context.Background(), longJD(), sampleResume, nil, selected)
	require.NoError(t, err)
	assert.Equal(t, 1, client.Calls())
}

func TestRewriteScoreClamped(t *testing.T) {
	svc := NewRewriteService(stub.New("nope"), testCfg("risk"))
	res, err := svc.Rewrite(context.Background(), longJD(), sampleResume, &domain.AnalysisResult{OverallScore: 95}, []string{"Figma"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.NewScore)
}

func mustQuote(s string) string {
	b := strings.Builder{}
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
