package rules

import (
	"fmt"
	"sort"
)

// Lint checks a rule set for mistakes that would silently weaken scanning:
// duplicate ids, missing metadata and patterns that fail to compile.
// Problems are returned sorted; an empty result means the set is clean.
func Lint(set []Rule) []string {
	var problems []string
	seen := make(map[string]struct{}, len(set))

	for i, rule := range set {
		name := rule.ID
		if name == "" {
			problems = append(problems, fmt.Sprintf("rules[%d].id is required", i))
			name = fmt.Sprintf("rules[%d]", i)
		} else if _, dup := seen[rule.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: id is duplicated", name))
		} else {
			seen[rule.ID] = struct{}{}
		}

		if rule.Title == "" {
			problems = append(problems, fmt.Sprintf("%s: title is required", name))
		}
		if !rule.Severity.Valid() {
			problems = append(problems, fmt.Sprintf("%s: severity %q must be LOW|MEDIUM|HIGH", name, rule.Severity))
		}
		if !rule.Tier.Valid() {
			problems = append(problems, fmt.Sprintf("%s: tier %q must be core|extended", name, rule.Tier))
		}
		if rule.Points <= 0 {
			problems = append(problems, fmt.Sprintf("%s: points must be > 0", name))
		}
		if rule.ExplainSimple == "" || rule.ExplainDev == "" {
			problems = append(problems, fmt.Sprintf("%s: both explanations are required", name))
		}
		if len(rule.Patterns) == 0 {
			problems = append(problems, fmt.Sprintf("%s: at least one pattern is required", name))
		}
		for j, p := range rule.patterns() {
			if err := p.Err(); err != nil {
				problems = append(problems, fmt.Sprintf("%s: patterns[%d] invalid: %v", name, j, err))
			}
		}
	}

	sort.Strings(problems)
	return problems
}

// LintCatalog lints the built-in catalog.
func LintCatalog() []string {
	return Lint(catalog)
}
