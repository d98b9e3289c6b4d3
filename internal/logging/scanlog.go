package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

const maxRecordedRules = 32

// ScanRecord is written as a single JSON object per API scan. It describes
// the scan, never its content: the text is kept only as a digest.
type ScanRecord struct {
	Timestamp  time.Time    `json:"ts"`
	RequestID  string       `json:"request_id"`
	ClientIP   string       `json:"client_ip"`
	Pack       string       `json:"pack"`
	Score      int          `json:"score"`
	Risk       string       `json:"risk"`
	Rules      []RuleRecord `json:"rules"`
	TextChars  int          `json:"text_chars"`
	TextSHA256 string       `json:"text_sha256"`
	Policy     PolicyRecord `json:"policy"`
	DurationMS int64        `json:"duration_ms"`
}

type RuleRecord struct {
	ID     string `json:"id"`
	Points int    `json:"points"`
}

// PolicyRecord captures the editor choices applied to the exported policy.
type PolicyRecord struct {
	Network    string `json:"network"`
	Filesystem string `json:"filesystem"`
	Approvals  bool   `json:"approvals"`
	Blocked    int    `json:"blocked_patterns"`
	Allowed    int    `json:"allowed_domains"`
}

type ScanLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewScanLogger(w io.Writer) *ScanLogger {
	return &ScanLogger{w: w}
}

// OpenScanLog appends to path. The parent directory must already exist;
// config validation reports a missing one before the server starts.
func OpenScanLog(path string) (*ScanLogger, func() error, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewScanLogger(file), file.Close, nil
}

func (l *ScanLogger) Write(record ScanRecord) error {
	if l == nil {
		return nil
	}
	if len(record.Rules) > maxRecordedRules {
		record.Rules = record.Rules[:maxRecordedRules]
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(data, '\n'))
	return err
}

// Digest returns the hex SHA-256 of text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
