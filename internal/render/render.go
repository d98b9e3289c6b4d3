// Package render formats scan results for terminals, documents and pipes.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clawshield/clawshield/internal/policy"
	"github.com/clawshield/clawshield/internal/scan"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
	FormatSARIF    Format = "sarif"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml, md or sarif)", s)
	}
}

type Explain string

const (
	ExplainSimple Explain = "simple"
	ExplainDev    Explain = "dev"
)

func ParseExplain(s string) (Explain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simple":
		return ExplainSimple, nil
	case "dev":
		return ExplainDev, nil
	default:
		return "", fmt.Errorf("unknown explain mode %q (want simple or dev)", s)
	}
}

type Options struct {
	Explain Explain
	Color   bool
}

// Output is what the structured formats serialize: the scan result with the
// synthesized policy alongside.
type Output struct {
	scan.Result `yaml:",inline"`
	Policy      policy.Document `json:"policy" yaml:"policy"`
}

func explanation(f scan.Finding, mode Explain) string {
	if mode == ExplainDev {
		return f.ExplainDev
	}
	return f.ExplainSimple
}

// Text writes the human-readable report.
func Text(w io.Writer, result scan.Result, doc policy.Document, opts Options) error {
	p := palette{color: opts.Color}
	var b strings.Builder

	fmt.Fprintf(&b, "%s score %d/100 (pack %s, medium>=%d, high>=%d)\n",
		p.badge(string(result.Risk)), result.Score, result.Pack, result.Thresholds.Medium, result.Thresholds.High)
	fmt.Fprintf(&b, "%s\n", result.Summary)

	if len(result.Findings) == 0 {
		b.WriteString("\nNo rules triggered.\n")
	}
	for _, f := range result.Findings {
		fmt.Fprintf(&b, "\n%s %s\n", p.title(f.Title), p.muted(fmt.Sprintf("(%s, %s, +%d)", f.RuleID, f.Severity, f.Points)))
		fmt.Fprintf(&b, "  %s\n", explanation(f, opts.Explain))
		for _, m := range f.Matches {
			fmt.Fprintf(&b, "  %s %s\n", p.muted(fmt.Sprintf("%4d |", m.Line)), m.Text)
		}
	}

	b.WriteString("\n" + p.title("Suggested policy") + "\n")
	fmt.Fprintf(&b, "  network: %s, filesystem: %s\n", doc.Default.Network, doc.Default.Filesystem)
	writeList(&b, "approval required for", doc.Default.RequireUserApprovalFor)
	writeList(&b, "block", doc.Blocklist.CommandPatterns)
	writeList(&b, "allow domains", doc.Allowlist.Domains)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "  %s: none\n", label)
		return
	}
	fmt.Fprintf(b, "  %s: %s\n", label, strings.Join(items, ", "))
}

// Markdown renders a report suitable for pasting into an issue or PR.
func Markdown(result scan.Result, doc policy.Document, opts Options) string {
	var b strings.Builder
	b.WriteString("# ClawShield scan\n\n")
	fmt.Fprintf(&b, "**Risk:** %s  \n**Score:** %d/100  \n**Pack:** %s\n\n", result.Risk, result.Score, result.Pack)
	fmt.Fprintf(&b, "%s\n\n", result.Summary)

	b.WriteString("## Findings\n\n")
	if len(result.Findings) == 0 {
		b.WriteString("- none\n\n")
	}
	for _, f := range result.Findings {
		fmt.Fprintf(&b, "### %s\n\n", f.Title)
		fmt.Fprintf(&b, "`%s` · %s · +%d\n\n", f.RuleID, f.Severity, f.Points)
		fmt.Fprintf(&b, "%s\n\n", explanation(f, opts.Explain))
		for _, m := range f.Matches {
			fmt.Fprintf(&b, "- line %d: `%s`\n", m.Line, strings.ReplaceAll(m.Text, "`", "'"))
		}
		if len(f.Matches) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("## Suggested policy\n\n```json\n")
	data, err := policy.Encode(doc, "json")
	if err == nil {
		b.Write(data)
	}
	b.WriteString("```\n")
	return b.String()
}

func JSON(out Output) ([]byte, error) {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func YAML(out Output) ([]byte, error) {
	return yaml.Marshal(out)
}
