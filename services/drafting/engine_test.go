package drafting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/governance-engine/models"
)

const testHash = "8f4e2a91c7b35d60"

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testHash, DefaultScoringConfig(), zap.NewNop())
	require.NoError(t, err)
	return e
}

func TestNewEngineRequiresComplianceHash(t *testing.T) {
	_, err := NewEngine("", DefaultScoringConfig(), zap.NewNop())
	assert.Error(t, err)
}

func TestDraftStampsComplianceHash(t *testing.T) {
	e := testEngine(t)

	draft, err := e.Draft("Users have the right to privacy and data protection", nil)
	require.NoError(t, err)

	assert.Contains(t, draft.Content, testHash)
}

func TestDraftCategoryHeaders(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name       string
		principle  string
		wantHeader string
		wantCat    models.Category
	}{
		{"privacy", "Users have the right to privacy", "package governance.privacy", models.CategoryPrivacy},
		{"security", "Access control must use strong authentication", "package governance.security", models.CategorySecurity},
		{"fairness", "Systems must avoid bias in decisions", "package governance.fairness", models.CategoryFairness},
		{"transparency", "All actions require an audit trail", "package governance.transparency", models.CategoryTransparency},
		{"default security", "Follow good operational practice", "package governance.security", models.CategorySecurity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := e.Draft(tt.principle, nil)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(draft.Content, tt.wantHeader),
				"rule should start with %q, got %q", tt.wantHeader, draft.Content)
			assert.Equal(t, tt.wantCat, draft.Category)
		})
	}
}

func TestDraftInjectsRiskThreshold(t *testing.T) {
	e := testEngine(t)
	risk := 0.4

	draft, err := e.Draft("Users have the right to privacy", &Context{RiskThreshold: &risk})
	require.NoError(t, err)

	assert.Contains(t, draft.Content, "0.4")
	assert.Contains(t, draft.Content, "input.risk_score <= 0.4")
}

func TestDraftDefaultRiskBound(t *testing.T) {
	e := testEngine(t)

	draft, err := e.Draft("Users have the right to privacy", nil)
	require.NoError(t, err)

	assert.Contains(t, draft.Content, "input.risk_score <= 0.5")
}

func TestDraftRejectsEmptyPrinciple(t *testing.T) {
	e := testEngine(t)

	_, err := e.Draft("   ", nil)
	assert.Error(t, err)
}

func TestDraftReasoningChain(t *testing.T) {
	e := testEngine(t)
	risk := 0.3

	draft, err := e.Draft("Users have the right to privacy", &Context{
		RiskThreshold: &risk,
		Overrides:     map[string]interface{}{"region": "eu"},
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(draft.Reasoning), 3)
	assert.Contains(t, draft.Reasoning[0], "privacy")
	assert.Contains(t, draft.Reasoning[1], "0.3")
}

func TestScoreConfidenceBounds(t *testing.T) {
	e := testEngine(t)

	long := strings.Repeat("privacy and data protection obligations ", 20)
	short := "privacy"

	longScore := e.Score(long, "rule with "+testHash)
	shortScore := e.Score(short, "rule with "+testHash)

	assert.Greater(t, longScore, shortScore)
	assert.LessOrEqual(t, longScore, 1.0)
	assert.GreaterOrEqual(t, shortScore, 0.0)
}

func TestScoreMissingHashScoresLower(t *testing.T) {
	e := testEngine(t)
	principle := "Users have the right to privacy and data protection"

	with := e.Score(principle, "allow if input.compliance_hash == "+testHash)
	without := e.Score(principle, "allow if true")

	assert.Greater(t, with, without)
}

func TestFallbackDraft(t *testing.T) {
	e := testEngine(t)

	draft := e.FallbackDraft()

	assert.True(t, strings.HasPrefix(draft.Content, "package governance.fallback"))
	assert.Contains(t, draft.Content, testHash)
	assert.Contains(t, draft.Content, "input.human_approved == true")
	assert.Equal(t, models.CategoryFallback, draft.Category)
	assert.NotEmpty(t, draft.Reasoning)
}

func TestDraftHasSingleAllowBlock(t *testing.T) {
	e := testEngine(t)

	draft, err := e.Draft("Users have the right to privacy", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(draft.Content, "allow if {"))
}
