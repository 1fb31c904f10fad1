// Package corpus loads principle records from YAML files supplied by the
// upstream governance collaborator.
package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/upb/governance-engine/models"
)

// file is the on-disk corpus shape.
type file struct {
	Principles []models.ConstitutionalPrinciple `yaml:"principles"`
}

// Load reads a YAML corpus file. Records with no priority weight default to
// 1.0. Structural validation (non-empty IDs, weight ranges) happens at index
// build time, not here.
func Load(path string) ([]models.ConstitutionalPrinciple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	return Parse(data)
}

// Parse decodes corpus YAML from memory.
func Parse(data []byte) ([]models.ConstitutionalPrinciple, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	principles := make([]models.ConstitutionalPrinciple, 0, len(f.Principles))
	for _, p := range f.Principles {
		if p.PriorityWeight == 0 {
			p.PriorityWeight = 1.0
		}
		principles = append(principles, p)
	}
	return principles, nil
}
