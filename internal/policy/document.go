// Package policy synthesizes the sandbox policy document exported alongside
// every scan. Documents are produced, never enforced, by this module.
package policy

import (
	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/scan"
)

const (
	Version = "0.3"
	Mode    = "guardrails"
)

const (
	NetworkRestricted = "restricted"
	NetworkAllowed    = "allowed"

	FilesystemReadOnly  = "read_only"
	FilesystemReadWrite = "read_write"
)

const (
	ApproveWriteFiles      = "write_files"
	ApproveExecuteCommands = "execute_commands"
	ApproveNetworkRequests = "network_requests"
)

var notes = []string{
	"This is a suggested policy for an agent runner. Enforce with a sandbox + explicit approvals.",
	"Prefer domain allowlists; keep network restricted unless you truly need it.",
}

// Editor holds caller-supplied overrides. The zero value is the fail-safe
// default: restricted network, read-only filesystem, approvals on.
type Editor struct {
	Network          string   `json:"network,omitempty" yaml:"network,omitempty"`
	Filesystem       string   `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
	ApprovalsEnabled *bool    `json:"approvalsEnabled,omitempty" yaml:"approvalsEnabled,omitempty"`
	AllowlistDomains []string `json:"allowlistDomains,omitempty" yaml:"allowlistDomains,omitempty"`
}

type Defaults struct {
	Network                string   `json:"network" yaml:"network"`
	Filesystem             string   `json:"filesystem" yaml:"filesystem"`
	RequireUserApprovalFor []string `json:"require_user_approval_for" yaml:"require_user_approval_for"`
}

type Document struct {
	Version    string          `json:"version" yaml:"version"`
	Mode       string          `json:"mode" yaml:"mode"`
	RulePack   pack.Name       `json:"rule_pack" yaml:"rule_pack"`
	Thresholds pack.Thresholds `json:"thresholds" yaml:"thresholds"`
	Default    Defaults        `json:"default" yaml:"default"`
	Blocklist  scan.Blocklist  `json:"blocklist" yaml:"blocklist"`
	Allowlist  scan.Allowlist  `json:"allowlist" yaml:"allowlist"`
	Notes      []string        `json:"notes" yaml:"notes"`
}

// Approvals reports whether approval gates are on; nil means on.
func (e Editor) Approvals() bool {
	return e.ApprovalsEnabled == nil || *e.ApprovalsEnabled
}
