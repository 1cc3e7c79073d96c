package suggest

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dshills/redline/internal/analysis"
	"gopkg.in/yaml.v3"
)

// Rules represents a house-style pack loaded from --rules.
type Rules struct {
	Focus       []string          `yaml:"focus,omitempty"`
	Required    []RequiredCheck   `yaml:"required,omitempty"`
	Terminology map[string]string `yaml:"terminology,omitempty"`
	// Categories restricts which categories are kept. Empty keeps all.
	Categories []string `yaml:"categories,omitempty"`
}

// RequiredCheck is a policy check that should always be enforced.
type RequiredCheck struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	for _, c := range rules.Categories {
		if _, err := analysis.ParseCategory(c); err != nil {
			return nil, fmt.Errorf("rules file: %w", err)
		}
	}
	return &rules, nil
}

// BuildRulesPromptSection returns additional prompt instructions derived from rules.
func BuildRulesPromptSection(rules *Rules) string {
	if rules == nil {
		return ""
	}

	var b strings.Builder

	if len(rules.Focus) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s. Prioritize suggestions in these areas.\n",
			strings.Join(rules.Focus, ", "))
	}

	if len(rules.Categories) > 0 {
		fmt.Fprintf(&b, "\nOnly report suggestions of type: %s.\n",
			strings.Join(rules.Categories, ", "))
	}

	if len(rules.Terminology) > 0 {
		b.WriteString("\nPreferred terminology:\n")
		terms := make([]string, 0, len(rules.Terminology))
		for term := range rules.Terminology {
			terms = append(terms, term)
		}
		slices.Sort(terms)
		for _, term := range terms {
			fmt.Fprintf(&b, "- use %q instead of %q\n", rules.Terminology[term], term)
		}
	}

	if len(rules.Required) > 0 {
		b.WriteString("\nRequired checks (always evaluate these):\n")
		for _, req := range rules.Required {
			fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
		}
	}

	return b.String()
}

// Allows reports whether drafts of category c are kept.
func (r *Rules) Allows(c analysis.Category) bool {
	if r == nil || len(r.Categories) == 0 {
		return true
	}
	for _, allowed := range r.Categories {
		if parsed, err := analysis.ParseCategory(allowed); err == nil && parsed == c {
			return true
		}
	}
	return false
}

// filterDrafts drops drafts whose category the rules exclude.
func filterDrafts(drafts []analysis.Draft, rules *Rules) []analysis.Draft {
	if rules == nil || len(rules.Categories) == 0 {
		return drafts
	}
	kept := drafts[:0:0]
	for _, d := range drafts {
		if rules.Allows(d.Category) {
			kept = append(kept, d)
		}
	}
	return kept
}
