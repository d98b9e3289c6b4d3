package scan

import (
	"strings"

	"github.com/clawshield/clawshield/internal/pack"
)

const (
	MinScore = 0
	MaxScore = 100
)

var summaries = map[Risk]string{
	RiskHigh:   "High-risk patterns detected. Treat as unsafe by default.",
	RiskMedium: "Some risky capabilities detected. Add guardrails and approvals.",
	RiskLow:    "No major red flags detected by heuristics. Still review before running.",
}

// Classify maps a clamped score onto a risk tier using the pack thresholds.
func Classify(score int, t pack.Thresholds) Risk {
	switch {
	case score >= t.High:
		return RiskHigh
	case score >= t.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Summary depends on the risk tier only.
func Summary(risk Risk) string {
	if s, ok := summaries[risk]; ok {
		return s
	}
	return summaries[RiskLow]
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
