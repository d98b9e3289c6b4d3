package rules

import "github.com/clawshield/clawshield/internal/normalize"

// DefaultMatchLimit caps line matches per finding.
const DefaultMatchLimit = 8

// Triggered reports whether any of the rule's patterns matches anywhere in text.
func (r Rule) Triggered(text string) bool {
	for _, p := range r.patterns() {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Matches returns up to DefaultMatchLimit representative lines for the rule.
func (r Rule) Matches(text string) []LineMatch {
	return FindMatches(text, r.patterns(), DefaultMatchLimit)
}

func (r Rule) patterns() []*Pattern {
	if r.compiled == nil && len(r.Patterns) > 0 {
		return compilePatterns(r.Patterns)
	}
	return r.compiled
}

// FindMatches records at most one match per line, in line order, and stops
// once limit lines have been collected.
func FindMatches(text string, patterns []*Pattern, limit int) []LineMatch {
	if limit <= 0 || len(patterns) == 0 {
		return nil
	}

	var out []LineMatch
	for i, line := range normalize.SplitLines(text) {
		for _, p := range patterns {
			if !p.MatchString(line) {
				continue
			}
			out = append(out, LineMatch{Line: i + 1, Text: snippet(line)})
			break
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}
