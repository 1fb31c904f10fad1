package models

import "fmt"

// DefaultComplianceHash is the process-wide provenance stamp. Every synthesized
// rule embeds this value (or the configured override) as a literal so downstream
// evaluators can verify provenance without parsing reasoning metadata.
const DefaultComplianceHash = "8f4e2a91c7b35d60"

// ConstitutionalPrinciple represents one governance statement the engine can draw on
type ConstitutionalPrinciple struct {
	ID             string  `json:"id" yaml:"id"`
	Content        string  `json:"content" yaml:"content"`
	Category       string  `json:"category,omitempty" yaml:"category,omitempty"`
	PriorityWeight float64 `json:"priority_weight" yaml:"priority_weight"`
}

// Validate checks that a principle record is well-formed.
// Called at index build time; a failure here is a configuration error.
func (p *ConstitutionalPrinciple) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("principle ID is required")
	}
	if p.Content == "" {
		return fmt.Errorf("principle %s: content is required", p.ID)
	}
	if p.PriorityWeight < 0 || p.PriorityWeight > 1 {
		return fmt.Errorf("principle %s: priority weight %.2f outside [0,1]", p.ID, p.PriorityWeight)
	}
	return nil
}
