package policy

import (
	"github.com/clawshield/clawshield/internal/normalize"
	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/scan"
)

// Synthesize merges scan suggestions with editor overrides. Only the exact
// values "allowed" and "read_write" loosen the defaults.
func Synthesize(suggested scan.Suggested, editor Editor, cfg pack.Config) Document {
	network := NetworkRestricted
	if editor.Network == NetworkAllowed {
		network = NetworkAllowed
	}

	filesystem := FilesystemReadOnly
	if editor.Filesystem == FilesystemReadWrite {
		filesystem = FilesystemReadWrite
	}

	approvals := []string{}
	if editor.Approvals() {
		approvals = []string{ApproveWriteFiles, ApproveExecuteCommands, ApproveNetworkRequests}
	}

	domains := make([]string, 0, len(suggested.Allowlist.Domains)+len(editor.AllowlistDomains))
	domains = append(domains, normalize.Domains(suggested.Allowlist.Domains)...)
	domains = append(domains, normalize.Domains(editor.AllowlistDomains)...)

	return Document{
		Version:    Version,
		Mode:       Mode,
		RulePack:   cfg.Name,
		Thresholds: cfg.Thresholds,
		Default: Defaults{
			Network:                network,
			Filesystem:             filesystem,
			RequireUserApprovalFor: approvals,
		},
		Blocklist: scan.Blocklist{CommandPatterns: normalize.Unique(suggested.Blocklist.CommandPatterns)},
		Allowlist: scan.Allowlist{Domains: normalize.Unique(domains)},
		Notes:     append([]string(nil), notes...),
	}
}

// ForScan synthesizes the policy for a finished scan.
func ForScan(result scan.Result, editor Editor) Document {
	return Synthesize(result.Suggested, editor, pack.Resolve(string(result.Pack)))
}
