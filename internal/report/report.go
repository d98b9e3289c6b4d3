// Package report aggregates the scan audit log into a summary.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clawshield/clawshield/internal/logging"
	"github.com/clawshield/clawshield/internal/render"
)

const topN = 5

type Summary struct {
	Total    int            `json:"total" yaml:"total"`
	High     int            `json:"high" yaml:"high"`
	Medium   int            `json:"medium" yaml:"medium"`
	Low      int            `json:"low" yaml:"low"`
	Start    time.Time      `json:"start" yaml:"start"`
	End      time.Time      `json:"end" yaml:"end"`
	Packs    []CountItem    `json:"packs" yaml:"packs"`
	TopRules []CountItem    `json:"top_rules" yaml:"top_rules"`
	Score    ScoreSummary   `json:"score" yaml:"score"`
	Latency  LatencySummary `json:"latency" yaml:"latency"`
}

type CountItem struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

type ScoreSummary struct {
	Mean float64 `json:"mean" yaml:"mean"`
	P50  float64 `json:"p50" yaml:"p50"`
	P95  float64 `json:"p95" yaml:"p95"`
	Max  int     `json:"max" yaml:"max"`
}

type LatencySummary struct {
	P50 float64 `json:"p50" yaml:"p50"`
	P95 float64 `json:"p95" yaml:"p95"`
	P99 float64 `json:"p99" yaml:"p99"`
}

type Reader struct {
	Since time.Time
}

func (r *Reader) Read(path string) ([]logging.ScanRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return r.ReadFrom(file)
}

// ReadFrom decodes one record per non-empty line.
func (r *Reader) ReadFrom(src io.Reader) ([]logging.ScanRecord, error) {
	var records []logging.ScanRecord
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec logging.ScanRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !r.Since.IsZero() && rec.Timestamp.Before(r.Since) {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func Summarize(records []logging.ScanRecord) Summary {
	var summary Summary
	if len(records) == 0 {
		return summary
	}

	summary.Start = records[0].Timestamp
	summary.End = records[0].Timestamp

	packCounts := map[string]int{}
	ruleCounts := map[string]int{}
	scores := make([]int64, 0, len(records))
	latencies := make([]int64, 0, len(records))
	scoreSum := 0

	for _, rec := range records {
		summary.Total++
		if rec.Timestamp.Before(summary.Start) {
			summary.Start = rec.Timestamp
		}
		if rec.Timestamp.After(summary.End) {
			summary.End = rec.Timestamp
		}

		switch rec.Risk {
		case "HIGH":
			summary.High++
		case "MEDIUM":
			summary.Medium++
		default:
			summary.Low++
		}

		packCounts[rec.Pack]++
		for _, rule := range rec.Rules {
			ruleCounts[rule.ID]++
		}

		scoreSum += rec.Score
		if rec.Score > summary.Score.Max {
			summary.Score.Max = rec.Score
		}
		scores = append(scores, int64(rec.Score))
		latencies = append(latencies, rec.DurationMS)
	}

	summary.Packs = topCounts(packCounts, len(packCounts))
	summary.TopRules = topCounts(ruleCounts, topN)

	sortedScores := sortedCopy(scores)
	summary.Score.Mean = float64(scoreSum) / float64(summary.Total)
	summary.Score.P50 = percentile(sortedScores, 0.50)
	summary.Score.P95 = percentile(sortedScores, 0.95)
	summary.Latency = latencySummary(latencies)

	return summary
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func latencySummary(values []int64) LatencySummary {
	if len(values) == 0 {
		return LatencySummary{}
	}
	sorted := sortedCopy(values)
	return LatencySummary{
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
		P99: percentile(sorted, 0.99),
	}
}

func sortedCopy(values []int64) []int64 {
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

func percentile(values []int64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	idx := int(float64(len(values)-1) * p)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return float64(values[idx])
}

func RenderText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scans: %d\n", summary.Total)
	fmt.Fprintf(&b, "High: %d\n", summary.High)
	fmt.Fprintf(&b, "Medium: %d\n", summary.Medium)
	fmt.Fprintf(&b, "Low: %d\n", summary.Low)
	if summary.Total > 0 {
		fmt.Fprintf(&b, "Window: %s .. %s\n", summary.Start.Format(time.RFC3339), summary.End.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Score mean/p50/p95/max: %.1f/%.0f/%.0f/%d\n", summary.Score.Mean, summary.Score.P50, summary.Score.P95, summary.Score.Max)
	fmt.Fprintf(&b, "Latency p50/p95/p99 (ms): %.0f/%.0f/%.0f\n", summary.Latency.P50, summary.Latency.P95, summary.Latency.P99)

	writeCounts(&b, "Packs", summary.Packs)
	writeCounts(&b, "Top rules", summary.TopRules)

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# ClawShield Scan Report\n\n")
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Scans: %d\n", summary.Total)
	fmt.Fprintf(&b, "- High: %d\n", summary.High)
	fmt.Fprintf(&b, "- Medium: %d\n", summary.Medium)
	fmt.Fprintf(&b, "- Low: %d\n", summary.Low)
	fmt.Fprintf(&b, "- Score mean/p50/p95/max: %.1f/%.0f/%.0f/%d\n", summary.Score.Mean, summary.Score.P50, summary.Score.P95, summary.Score.Max)
	fmt.Fprintf(&b, "- Latency p50/p95/p99 (ms): %.0f/%.0f/%.0f\n\n", summary.Latency.P50, summary.Latency.P95, summary.Latency.P99)

	writeCountsMarkdown(&b, "Packs", summary.Packs)
	writeCountsMarkdown(&b, "Top rules", summary.TopRules)

	return b.String()
}

func RenderJSON(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
}

func writeCountsMarkdown(b *strings.Builder, title string, items []CountItem) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
	b.WriteString("\n")
}

// ParseFormat accepts the render formats a summary can be written in.
func ParseFormat(s string) (render.Format, error) {
	format, err := render.ParseFormat(s)
	if err != nil {
		return "", err
	}
	if format == render.FormatSARIF {
		return "", fmt.Errorf("report does not support format %q", s)
	}
	return format, nil
}

// Write renders summary to w. SARIF has no report shape and is rejected.
func Write(w io.Writer, summary Summary, format render.Format) error {
	switch format {
	case render.FormatText:
		_, err := io.WriteString(w, RenderText(summary))
		return err
	case render.FormatMarkdown:
		_, err := io.WriteString(w, RenderMarkdown(summary))
		return err
	case render.FormatJSON:
		data, err := RenderJSON(summary)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case render.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("report does not support format %q", format)
	}
}
