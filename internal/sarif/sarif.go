// Package sarif converts scan results to SARIF 2.1.0 for code-scanning UIs.
package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/clawshield/clawshield/internal/rules"
	"github.com/clawshield/clawshield/internal/scan"
)

const (
	Version   = "2.1.0"
	SchemaURI = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	ToolName  = "clawshield"
)

type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool       Tool           `json:"tool"`
	Results    []Result       `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name           string           `json:"name"`
	Version        string           `json:"version"`
	InformationURI string           `json:"informationUri,omitempty"`
	Rules          []RuleDescriptor `json:"rules"`
}

type RuleDescriptor struct {
	ID               string  `json:"id"`
	ShortDescription Message `json:"shortDescription"`
	FullDescription  Message `json:"fullDescription"`
	Help             Message `json:"help"`
}

type Result struct {
	RuleID    string     `json:"ruleId"`
	RuleIndex int        `json:"ruleIndex"`
	Message   Message    `json:"message"`
	Level     string     `json:"level"` // error, warning, note
	Locations []Location `json:"locations"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine int      `json:"startLine"`
	Snippet   *Message `json:"snippet,omitempty"`
}

// Build converts one scan of the artifact at uri into a single-run log.
// Every finding becomes one result with a location per matched line.
func Build(result scan.Result, uri, toolVersion string) Log {
	uri = toURI(uri)
	if uri == "" {
		uri = "stdin"
	}

	descriptors := make([]RuleDescriptor, 0, len(result.Findings))
	results := make([]Result, 0, len(result.Findings))
	for i, f := range result.Findings {
		descriptors = append(descriptors, RuleDescriptor{
			ID:               f.RuleID,
			ShortDescription: Message{Text: f.Title},
			FullDescription:  Message{Text: f.ExplainDev},
			Help:             Message{Text: f.ExplainSimple},
		})
		results = append(results, Result{
			RuleID:    f.RuleID,
			RuleIndex: i,
			Level:     level(f.Severity),
			Message:   Message{Text: strings.TrimSpace(f.Title + ". " + f.ExplainDev)},
			Locations: locations(uri, f.Matches),
		})
	}

	return Log{
		Version: Version,
		Schema:  SchemaURI,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: toolVersion,
						Rules:   descriptors,
					},
				},
				Results: results,
				Properties: map[string]any{
					"pack":  result.Pack,
					"risk":  result.Risk,
					"score": result.Score,
				},
			},
		},
	}
}

// Encode renders the log as indented JSON with a trailing newline.
func Encode(log Log) ([]byte, error) {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func locations(uri string, matches []rules.LineMatch) []Location {
	if len(matches) == 0 {
		return []Location{location(uri, rules.LineMatch{Line: 1})}
	}
	out := make([]Location, len(matches))
	for i, m := range matches {
		out[i] = location(uri, m)
	}
	return out
}

func location(uri string, m rules.LineMatch) Location {
	start := m.Line
	if start <= 0 {
		start = 1
	}
	region := Region{StartLine: start}
	if m.Text != "" {
		region.Snippet = &Message{Text: m.Text}
	}
	return Location{
		PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: uri},
			Region:           region,
		},
	}
}

func level(s rules.Severity) string {
	switch s {
	case rules.SeverityHigh:
		return "error"
	case rules.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	if p == "-" {
		return ""
	}
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
