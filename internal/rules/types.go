package rules

type Severity string

type Tier string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

const (
	TierCore     Tier = "core"
	TierExtended Tier = "extended"
)

// Rule is one immutable catalog entry. Rules carry data only; matching
// behavior lives in the compiled patterns.
type Rule struct {
	ID            string
	Title         string
	Severity      Severity
	Points        int
	Tier          Tier
	ExplainSimple string
	ExplainDev    string
	Patterns      []string
	// Block lists command patterns suggested for a policy blocklist
	// whenever the rule fires.
	Block []string

	compiled []*Pattern
}

// LineMatch is a representative input line for a triggered rule.
type LineMatch struct {
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

func (t Tier) Valid() bool {
	return t == TierCore || t == TierExtended
}
