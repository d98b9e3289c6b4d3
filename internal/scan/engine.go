// Package scan scores text against the rule catalog.
//
// A scan is a pure function of its input text and rule pack. The catalog is
// immutable, so scans may run concurrently without coordination.
package scan

import (
	"math"
	"sort"

	"github.com/clawshield/clawshield/internal/normalize"
	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/rules"
)

// Scan resolves packName and evaluates text against the pack's rules.
func Scan(text, packName string) Result {
	return Run(text, pack.Resolve(packName))
}

func Run(text string, cfg pack.Config) Result {
	return Evaluate(text, cfg, cfg.Rules())
}

// Evaluate scores text against an explicit rule set using cfg's multiplier
// and thresholds.
func Evaluate(text string, cfg pack.Config, set []rules.Rule) Result {
	multiplier := cfg.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	findings := make([]Finding, 0, len(set))
	var blocked []string
	score := 0

	for _, rule := range set {
		if !rule.Triggered(text) {
			continue
		}

		points := weigh(rule.Points, multiplier)
		score += points

		matches := rule.Matches(text)
		if matches == nil {
			matches = []rules.LineMatch{}
		}
		findings = append(findings, Finding{
			RuleID:        rule.ID,
			Title:         rule.Title,
			Severity:      rule.Severity,
			Points:        points,
			ExplainSimple: rule.ExplainSimple,
			ExplainDev:    rule.ExplainDev,
			Matches:       matches,
		})
		blocked = append(blocked, rule.Block...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Points > findings[j].Points
	})

	score = clamp(score, MinScore, MaxScore)
	risk := Classify(score, cfg.Thresholds)

	return Result{
		Risk:       risk,
		Score:      score,
		Summary:    Summary(risk),
		Pack:       cfg.Name,
		Thresholds: cfg.Thresholds,
		Findings:   findings,
		Suggested: Suggested{
			Blocklist: Blocklist{CommandPatterns: normalize.Unique(blocked)},
			Allowlist: Allowlist{Domains: normalize.ExtractDomains(text)},
		},
	}
}

// weigh rounds half away from zero.
func weigh(base int, multiplier float64) int {
	return int(math.Round(float64(base) * multiplier))
}
