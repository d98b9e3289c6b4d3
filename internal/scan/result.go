package scan

import (
	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/rules"
)

type Risk string

const (
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
	RiskHigh   Risk = "HIGH"
)

// Finding is one triggered rule for one scan.
type Finding struct {
	RuleID        string            `json:"ruleId" yaml:"ruleId"`
	Title         string            `json:"title" yaml:"title"`
	Severity      rules.Severity    `json:"severity" yaml:"severity"`
	Points        int               `json:"points" yaml:"points"`
	ExplainSimple string            `json:"explainSimple" yaml:"explainSimple"`
	ExplainDev    string            `json:"explainDev" yaml:"explainDev"`
	Matches       []rules.LineMatch `json:"matches" yaml:"matches"`
}

type Blocklist struct {
	CommandPatterns []string `json:"command_patterns" yaml:"command_patterns"`
}

type Allowlist struct {
	Domains []string `json:"domains" yaml:"domains"`
}

// Suggested holds the policy lists derived from a scan.
type Suggested struct {
	Blocklist Blocklist `json:"blocklist" yaml:"blocklist"`
	Allowlist Allowlist `json:"allowlist" yaml:"allowlist"`
}

type Result struct {
	Risk       Risk            `json:"risk" yaml:"risk"`
	Score      int             `json:"score" yaml:"score"`
	Summary    string          `json:"summary" yaml:"summary"`
	Pack       pack.Name       `json:"pack" yaml:"pack"`
	Thresholds pack.Thresholds `json:"thresholds" yaml:"thresholds"`
	Findings   []Finding       `json:"findings" yaml:"findings"`
	Suggested  Suggested       `json:"suggested" yaml:"suggested"`
}

// RuleIDs lists the triggered rules in finding order.
func (r Result) RuleIDs() []string {
	ids := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		ids[i] = f.RuleID
	}
	return ids
}

// AtLeast reports whether r is as severe as other.
func (r Risk) AtLeast(other Risk) bool {
	return r.rank() >= other.rank()
}

func (r Risk) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// ParseRisk accepts low|medium|high in any case.
func ParseRisk(s string) (Risk, bool) {
	switch Risk(upper(s)) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	default:
		return "", false
	}
}
