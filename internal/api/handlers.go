package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/clawshield/clawshield/internal/logging"
	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/policy"
	"github.com/clawshield/clawshield/internal/rules"
	"github.com/clawshield/clawshield/internal/scan"
)

const (
	msgMissingText   = "Missing 'text' (string)."
	msgTooLarge      = "Input too large. Keep it under 200k characters."
	msgBodyTooLarge  = "Request body too large."
	msgInternal      = "Internal error."
	msgMethodNotPost = "Method not allowed. Use POST."
	msgMethodNotGet  = "Method not allowed. Use GET."
)

// scanRequest keeps every field raw so that a mistyped pack or editor value
// falls back to its default instead of rejecting the scan.
type scanRequest struct {
	Text   json.RawMessage `json:"text"`
	Pack   json.RawMessage `json:"pack"`
	Editor json.RawMessage `json:"editor"`
}

// editorFields mirrors policy.Editor with every value left raw.
type editorFields struct {
	Network          json.RawMessage `json:"network"`
	Filesystem       json.RawMessage `json:"filesystem"`
	ApprovalsEnabled json.RawMessage `json:"approvalsEnabled"`
	AllowlistDomains json.RawMessage `json:"allowlistDomains"`
}

type scanResponse struct {
	OK bool `json:"ok"`
	scan.Result
	Policy policy.Document `json:"policy"`
}

type ruleView struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Severity      rules.Severity `json:"severity"`
	Points        int            `json:"points"`
	Tier          rules.Tier     `json:"tier"`
	ExplainSimple string         `json:"explainSimple"`
	ExplainDev    string         `json:"explainDev"`
	Block         []string       `json:"block"`
}

type rulesResponse struct {
	Pack  pack.Name  `json:"pack"`
	Rules []ruleView `json:"rules"`
}

func (s *Server) handleScan(c *gin.Context) {
	start := time.Now()

	var req scanRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.ObserveRejection("too_large")
			fail(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		s.metrics.ObserveRejection("bad_request")
		fail(c, http.StatusBadRequest, msgMissingText)
		return
	}

	var text string
	if len(req.Text) == 0 || json.Unmarshal(req.Text, &text) != nil || strings.TrimSpace(text) == "" {
		s.metrics.ObserveRejection("bad_request")
		fail(c, http.StatusBadRequest, msgMissingText)
		return
	}

	chars := utf8.RuneCountInString(text)
	if chars > s.cfg.Scan.MaxTextChars {
		s.metrics.ObserveRejection("too_large")
		fail(c, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}

	packName := optionalString(req.Pack)
	if strings.TrimSpace(packName) == "" {
		packName = s.cfg.Scan.DefaultPack
	}
	cfg := pack.Resolve(packName)

	result := scan.Run(text, cfg)
	doc := policy.Synthesize(result.Suggested, decodeEditor(req.Editor), cfg)

	s.metrics.ObserveScan(result)
	s.recordScan(c, result, doc, chars, text, start)

	success(c, scanResponse{OK: true, Result: result, Policy: doc})
}

// optionalString returns raw as a string, or "" when it is absent or not a
// JSON string.
func optionalString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// decodeEditor reads each editor field on its own. A field with the wrong
// type is ignored and keeps its fail-safe default.
func decodeEditor(raw json.RawMessage) policy.Editor {
	var fields editorFields
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return policy.Editor{}
	}

	editor := policy.Editor{
		Network:    optionalString(fields.Network),
		Filesystem: optionalString(fields.Filesystem),
	}

	var approvals *bool
	if len(fields.ApprovalsEnabled) > 0 && json.Unmarshal(fields.ApprovalsEnabled, &approvals) == nil {
		editor.ApprovalsEnabled = approvals
	}

	var domains []json.RawMessage
	if len(fields.AllowlistDomains) > 0 && json.Unmarshal(fields.AllowlistDomains, &domains) == nil {
		for _, d := range domains {
			if v := optionalString(d); v != "" {
				editor.AllowlistDomains = append(editor.AllowlistDomains, v)
			}
		}
	}
	return editor
}

func (s *Server) recordScan(c *gin.Context, result scan.Result, doc policy.Document, chars int, text string, start time.Time) {
	if s.scanLog == nil {
		return
	}

	ruleRecords := make([]logging.RuleRecord, len(result.Findings))
	for i, f := range result.Findings {
		ruleRecords[i] = logging.RuleRecord{ID: f.RuleID, Points: f.Points}
	}

	record := logging.ScanRecord{
		Timestamp:  start.UTC(),
		RequestID:  c.GetString(ctxRequestID),
		ClientIP:   c.ClientIP(),
		Pack:       string(result.Pack),
		Score:      result.Score,
		Risk:       string(result.Risk),
		Rules:      ruleRecords,
		TextChars:  chars,
		TextSHA256: logging.Digest(text),
		Policy: logging.PolicyRecord{
			Network:    doc.Default.Network,
			Filesystem: doc.Default.Filesystem,
			Approvals:  len(doc.Default.RequireUserApprovalFor) > 0,
			Blocked:    len(doc.Blocklist.CommandPatterns),
			Allowed:    len(doc.Allowlist.Domains),
		},
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err := s.scanLog.Write(record); err != nil {
		s.log.Warnw("write scan log", "request_id", record.RequestID, "error", err)
	}
}

func (s *Server) handleRules(c *gin.Context) {
	cfg := pack.Resolve(c.Query("pack"))
	set := cfg.Rules()

	views := make([]ruleView, len(set))
	for i, r := range set {
		block := r.Block
		if block == nil {
			block = []string{}
		}
		views[i] = ruleView{
			ID:            r.ID,
			Title:         r.Title,
			Severity:      r.Severity,
			Points:        r.Points,
			Tier:          r.Tier,
			ExplainSimple: r.ExplainSimple,
			ExplainDev:    r.ExplainDev,
			Block:         block,
		}
	}
	success(c, rulesResponse{Pack: cfg.Name, Rules: views})
}

func (s *Server) handlePacks(c *gin.Context) {
	success(c, gin.H{"packs": pack.All(), "default": pack.Resolve(s.cfg.Scan.DefaultPack).Name})
}

func (s *Server) handleHealth(c *gin.Context) {
	success(c, gin.H{"status": "ok", "rules": len(rules.All())})
}

func (s *Server) methodNotAllowed(c *gin.Context) {
	if c.Request.URL.Path == RouteScan {
		c.Header("Allow", http.MethodPost)
		fail(c, http.StatusMethodNotAllowed, msgMethodNotPost)
		return
	}
	c.Header("Allow", http.MethodGet)
	fail(c, http.StatusMethodNotAllowed, msgMethodNotGet)
}
