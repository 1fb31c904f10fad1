package models

import "strings"

// Category is the closed set of governance concerns a rule can target.
// Adding a category means adding an enum member, its keyword list, and a
// drafting template — nothing else.
type Category string

const (
	CategoryPrivacy      Category = "privacy"
	CategorySecurity     Category = "security"
	CategoryFairness     Category = "fairness"
	CategoryTransparency Category = "transparency"

	// CategoryFallback is reserved for the degenerate path; the classifier
	// never returns it.
	CategoryFallback Category = "fallback"
)

// Categories lists the classifiable categories in classification order.
func Categories() []Category {
	return []Category{CategoryPrivacy, CategorySecurity, CategoryFairness, CategoryTransparency}
}

// categoryKeywords drives ClassifyContent. Order within a list does not matter;
// the first category with any matching keyword wins.
var categoryKeywords = map[Category][]string{
	CategoryPrivacy:      {"privacy", "personal data", "data protection", "confidential", "consent"},
	CategorySecurity:     {"security", "access control", "authentication", "encryption", "vulnerability"},
	CategoryFairness:     {"fairness", "bias", "discrimination", "equal", "equitable"},
	CategoryTransparency: {"transparency", "explainab", "disclosure", "accountab", "audit"},
}

// ClassifyContent assigns a governance category to principle text by keyword
// containment, defaulting to security when nothing matches.
func ClassifyContent(text string) Category {
	lowered := strings.ToLower(text)
	for _, category := range Categories() {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lowered, keyword) {
				return category
			}
		}
	}
	return CategorySecurity
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
