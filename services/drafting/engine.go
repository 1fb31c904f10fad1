// Package drafting turns a governance principle into a machine-checkable
// policy rule with a self-reported confidence and an auditable reasoning
// chain. Rule bodies are Rego-style: one package header, one allow block.
package drafting

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/governance-engine/models"
)

// Scoring defaults. Preserved from the source system as configurable values;
// they are not derived from first principles and await product-owner
// confirmation.
const (
	DefaultBaseConfidence = 0.45
	DefaultLengthWeight   = 0.35
	DefaultLengthCutoff   = 240
	DefaultHashBonus      = 0.15

	// DefaultRiskBound is the risk_score ceiling used when the caller
	// supplies no override.
	DefaultRiskBound = 0.5
)

// ScoringConfig holds the confidence scoring weights
type ScoringConfig struct {
	BaseConfidence float64
	LengthWeight   float64
	LengthCutoff   int
	HashBonus      float64
}

// DefaultScoringConfig returns the default scoring weights
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseConfidence: DefaultBaseConfidence,
		LengthWeight:   DefaultLengthWeight,
		LengthCutoff:   DefaultLengthCutoff,
		HashBonus:      DefaultHashBonus,
	}
}

// Context carries caller intent into the drafted rule body.
type Context struct {
	// RiskThreshold, when set, is substituted verbatim into the rule's
	// risk_score bound.
	RiskThreshold *float64

	// Overrides are additional caller-supplied values. They do not alter the
	// rule body; they are recorded in the reasoning chain for audit.
	Overrides map[string]interface{}
}

// Draft is the output of one drafting pass.
type Draft struct {
	Content    string
	Category   models.Category
	Confidence float64
	Reasoning  []string
}

// Engine drafts structured policy rules from principle text
type Engine struct {
	complianceHash string
	scoring        ScoringConfig
	logger         *zap.Logger
}

// NewEngine creates a drafting engine stamping rules with the given
// compliance hash
func NewEngine(complianceHash string, scoring ScoringConfig, logger *zap.Logger) (*Engine, error) {
	if complianceHash == "" {
		return nil, fmt.Errorf("compliance hash is required")
	}
	if scoring.LengthCutoff <= 0 {
		scoring = DefaultScoringConfig()
	}
	return &Engine{
		complianceHash: complianceHash,
		scoring:        scoring,
		logger:         logger,
	}, nil
}

// Draft produces a rule for the principle text. The category decides the
// structural template, the context parameterizes the risk bound, and the
// compliance hash is stamped unconditionally.
func (e *Engine) Draft(principleText string, dctx *Context) (*Draft, error) {
	if strings.TrimSpace(principleText) == "" {
		return nil, fmt.Errorf("principle text is empty")
	}

	category := models.ClassifyContent(principleText)
	reasoning := []string{
		fmt.Sprintf("classified principle as %q by keyword match", category),
	}

	riskBound := DefaultRiskBound
	if dctx != nil && dctx.RiskThreshold != nil {
		riskBound = *dctx.RiskThreshold
		reasoning = append(reasoning, fmt.Sprintf("applied caller risk threshold %s", formatFloat(riskBound)))
	} else {
		reasoning = append(reasoning, fmt.Sprintf("no risk threshold supplied, using default %s", formatFloat(riskBound)))
	}
	if dctx != nil && len(dctx.Overrides) > 0 {
		reasoning = append(reasoning, fmt.Sprintf("caller supplied %d context override(s)", len(dctx.Overrides)))
	}

	content := e.render(category, riskBound)

	confidence := e.Score(principleText, content)
	reasoning = append(reasoning, fmt.Sprintf(
		"confidence %.2f from principle length %d (cutoff %d) and compliance stamp",
		confidence, len(principleText), e.scoring.LengthCutoff))

	e.logger.Debug("drafted rule",
		zap.String("category", category.String()),
		zap.Float64("confidence", confidence),
		zap.Float64("risk_bound", riskBound))

	return &Draft{
		Content:    content,
		Category:   category,
		Confidence: confidence,
		Reasoning:  reasoning,
	}, nil
}

// FallbackDraft produces the minimal safety-net rule used when no principle
// can be retrieved. It never fails.
func (e *Engine) FallbackDraft() *Draft {
	var b strings.Builder
	b.WriteString("package governance.fallback\n\n")
	b.WriteString("default allow = false\n\n")
	b.WriteString("allow if {\n")
	fmt.Fprintf(&b, "    input.compliance_hash == %q\n", e.complianceHash)
	b.WriteString("    input.human_approved == true\n")
	b.WriteString("}\n")

	return &Draft{
		Content:    b.String(),
		Category:   models.CategoryFallback,
		Confidence: 0, // set by the orchestrator
		Reasoning:  []string{"no principle available, emitted fallback rule requiring explicit human approval"},
	}
}

// Score computes confidence for a rule drafted from the given principle text:
// a weighted combination of normalized principle length (saturating at the
// cutoff) and a bonus when the compliance hash is present in the rule.
// Exported because validation elsewhere scores rules that lack the stamp.
func (e *Engine) Score(principleText, ruleContent string) float64 {
	lengthScore := float64(len(principleText)) / float64(e.scoring.LengthCutoff)
	if lengthScore > 1 {
		lengthScore = 1
	}

	confidence := e.scoring.BaseConfidence + e.scoring.LengthWeight*lengthScore
	if strings.Contains(ruleContent, e.complianceHash) {
		confidence += e.scoring.HashBonus
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// ComplianceHash returns the stamp embedded in every drafted rule
func (e *Engine) ComplianceHash() string {
	return e.complianceHash
}

// render builds the category-specific rule body. Every template shares the
// same skeleton: package header, default deny, one allow block containing the
// compliance stamp, the risk bound, and the category's compliance condition.
func (e *Engine) render(category models.Category, riskBound float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package governance.%s\n\n", category)
	b.WriteString("default allow = false\n\n")
	b.WriteString("allow if {\n")
	fmt.Fprintf(&b, "    input.compliance_hash == %q\n", e.complianceHash)
	fmt.Fprintf(&b, "    input.risk_score <= %s\n", formatFloat(riskBound))

	switch category {
	case models.CategoryPrivacy:
		b.WriteString("    input.data_minimization == true\n")
		b.WriteString("    input.consent_obtained == true\n")
	case models.CategorySecurity:
		b.WriteString("    input.access_verified == true\n")
		b.WriteString("    input.encryption_enabled == true\n")
	case models.CategoryFairness:
		b.WriteString("    input.bias_audit_passed == true\n")
	case models.CategoryTransparency:
		b.WriteString("    input.decision_explained == true\n")
		b.WriteString("    input.audit_trail_enabled == true\n")
	}

	b.WriteString("}\n")
	return b.String()
}

// formatFloat renders a float the way it was written, so a caller-supplied
// 0.4 appears as "0.4" in the rule body.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
