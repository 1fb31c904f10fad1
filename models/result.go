package models

import "time"

// Rule ID prefixes. Callers branch on provenance by prefix without inspecting
// confidence.
const (
	RuleIDPrefix         = "rule-"
	FallbackRuleIDPrefix = "fallback-"
)

// RetrievalResult is one corpus hit for a query, carrying a copy of the
// principle's content and category so downstream stages need no second lookup.
type RetrievalResult struct {
	PrincipleID string  `json:"principle_id"`
	Content     string  `json:"content"`
	Category    string  `json:"category,omitempty"`
	Similarity  float64 `json:"similarity_score"`
}

// RuleSynthesisResult is the engine's output unit. Constructed once per
// GenerateRule call; the engine keeps no reference to it afterward.
type RuleSynthesisResult struct {
	RuleID              string    `json:"rule_id"`
	RuleContent         string    `json:"rule_content"`
	ConfidenceScore     float64   `json:"confidence_score"`
	SourcePrinciples    []string  `json:"source_principles"`
	Reasoning           []string  `json:"reasoning"`
	RequiresHumanReview bool      `json:"requires_human_review"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// IsFallback reports whether the result came from the degenerate path.
func (r *RuleSynthesisResult) IsFallback() bool {
	return len(r.RuleID) >= len(FallbackRuleIDPrefix) && r.RuleID[:len(FallbackRuleIDPrefix)] == FallbackRuleIDPrefix
}
