package rules

import "strings"

var definitions = []Rule{
	{
		ID:            "remote_pipe_to_shell",
		Title:         "Pipes remote content to a shell",
		Severity:      SeverityHigh,
		Points:        55,
		Tier:          TierCore,
		ExplainSimple: "This downloads something from the internet and runs it immediately, without giving you a chance to look at it first.",
		ExplainDev:    "Patterns like `curl ... | bash` execute unverified remote content with the caller's privileges. Prefer download, checksum/signature verification, review, then run.",
		Patterns: []string{
			`\b(curl|wget)\b[\s\S]{0,120}\|\s*(sudo\s+)?(bash|sh|zsh|pwsh|powershell)\b`,
			`\b(iwr|irm|invoke-webrequest|invoke-restmethod)\b[\s\S]{0,120}\|\s*(iex|invoke-expression|powershell|pwsh)\b`,
		},
		Block: []string{"curl | bash", "wget | bash", "Invoke-WebRequest | powershell"},
	},
	{
		ID:            "sudo_or_admin",
		Title:         "Uses elevated privileges",
		Severity:      SeverityMedium,
		Points:        18,
		Tier:          TierCore,
		ExplainSimple: "This asks for administrator rights, so any mistake or trick in it can affect your whole machine.",
		ExplainDev:    "Admin rights increase blast radius. Prefer a least-privilege sandbox and explicit approval gates for sudo/runas.",
		Patterns: []string{
			`\bsudo\b`,
			`\bdoas\b`,
			`\brunas\b`,
			`\bstart-process\b.*-verb\s+runas\b`,
		},
	},
	{
		ID:            "destructive_rm",
		Title:         "Potentially destructive delete/format commands",
		Severity:      SeverityHigh,
		Points:        45,
		Tier:          TierCore,
		ExplainSimple: "This can permanently delete files or wipe a disk.",
		ExplainDev:    "Detected recursive force deletes or filesystem formatting. Block these in agent execution policies.",
		Patterns: []string{
			`\brm\s+-(rf|fr)\b`,
			`\bdel\s+/f\b`,
			`\bformat\b`,
			`\bmkfs\.`,
			`\bdd\s+if=\S+\s+of=/dev/`,
		},
		Block: []string{"rm -rf", "mkfs.*", "format"},
	},
	{
		ID:            "credential_hunting",
		Title:         "Possible credential or secret access",
		Severity:      SeverityHigh,
		Points:        40,
		Tier:          TierCore,
		ExplainSimple: "This looks for passwords, API keys or login files that could be used to take over your accounts.",
		ExplainDev:    "Access to `.env`, SSH keys, cloud credentials, or secret-named values suggests credential hunting. Require explicit consent and redaction.",
		Patterns: []string{
			`\b(openai_api_key|api[_-]?key|secret|token|password)\b`,
			`~/\.ssh|\bid_rsa\b|\bauthorized_keys\b|\.aws/credentials`,
			`\.env\b`,
		},
		Block: []string{"cat ~/.ssh/id_rsa", "cat .env", "read ~/.aws/credentials"},
	},
	{
		ID:            "env_dump",
		Title:         "Reads environment variables",
		Severity:      SeverityMedium,
		Points:        18,
		Tier:          TierCore,
		ExplainSimple: "This reads your environment settings, which often contain hidden keys and passwords.",
		ExplainDev:    "Dumping environment variables can expose secrets. Restrict access or redact sensitive keys.",
		Patterns: []string{
			`\bprintenv\b`,
			`\benv\b`,
			`process\.env`,
			`os\.environ`,
		},
	},
	{
		ID:            "network_exfil",
		Title:         "Network-capable commands present",
		Severity:      SeverityMedium,
		Points:        16,
		Tier:          TierCore,
		ExplainSimple: "This can talk to other computers over the internet, which could be used to send your data away.",
		ExplainDev:    "Network tooling can exfiltrate data or fetch payloads. Keep network restricted and prefer domain allowlists.",
		Patterns: []string{
			`\b(nc|ncat|netcat|socat)\b`,
			`\bscp\b`,
			`\bcurl\b`,
			`\bwget\b`,
			`\binvoke-webrequest\b`,
		},
	},
	{
		ID:            "code_download_execute",
		Title:         "Inline code execution flags detected",
		Severity:      SeverityHigh,
		Points:        30,
		Tier:          TierCore,
		ExplainSimple: "This runs a hidden program written directly into the command, which makes it hard to tell what it really does.",
		ExplainDev:    "Interpreter flags such as `python -c`, `node -e` and `powershell -enc` hide behavior from review. Block or require approval.",
		Patterns: []string{
			`\bpython[0-9.]*\b[\s\S]{0,40}-c\b`,
			`\bnode\b[\s\S]{0,40}-e\b`,
			`\b(powershell|pwsh)\b[\s\S]{0,40}-(e|enc|encodedcommand)\b`,
		},
	},
	{
		ID:            "persistence",
		Title:         "Possible persistence mechanisms",
		Severity:      SeverityMedium,
		Points:        16,
		Tier:          TierCore,
		ExplainSimple: "This may set something up to keep running automatically, even after a restart.",
		ExplainDev:    "Scheduled tasks, launch agents, services and registry run keys give code persistence. Tightly control them in any agent runner.",
		Patterns: []string{
			`\b(crontab|launchctl|schtasks|registry)\b`,
			`\bsystemctl\s+enable\b`,
			`\breg\s+add\b`,
		},
	},
	{
		ID:            "base64_obfuscation",
		Title:         "Encoded or obfuscated content",
		Severity:      SeverityMedium,
		Points:        20,
		Tier:          TierExtended,
		ExplainSimple: "Part of this is scrambled so people cannot easily read it, which is a common way to hide bad behavior.",
		ExplainDev:    "Base64 decoding and long encoded blobs are used to smuggle payloads past review. Decode and inspect before running.",
		Patterns: []string{
			`\bbase64\s+(-d|--decode)\b`,
			`\batob\s*\(`,
			`\bfrombase64string\b`,
			`\b(base64_decode|b64decode)\s*\(`,
			`[a-z0-9+/]{120,}={0,2}`,
		},
	},
	{
		ID:            "eval_like",
		Title:         "Dynamic code evaluation",
		Severity:      SeverityHigh,
		Points:        30,
		Tier:          TierExtended,
		ExplainSimple: "This builds a program out of text and runs it on the fly, so what actually runs can differ from what you see.",
		ExplainDev:    "`eval`, `exec`, `new Function` and `Invoke-Expression` execute strings as code, defeating static review. Block them in agent code paths.",
		Patterns: []string{
			`\beval\s*\(`,
			`\bexec\s*\(`,
			`\bnew\s+function\s*\(`,
			`\b(invoke-expression|iex)\b`,
			`\beval\s+["'$]`,
		},
		Block: []string{"eval(", "exec(", "Function("},
	},
	{
		ID:            "install_scripts",
		Title:         "Dependency install or lifecycle scripts",
		Severity:      SeverityMedium,
		Points:        14,
		Tier:          TierExtended,
		ExplainSimple: "Installing packages can run code written by strangers on your computer.",
		ExplainDev:    "Package installs execute lifecycle hooks (preinstall/postinstall, setup.py). Pin versions, use --ignore-scripts, or install in a sandbox.",
		Patterns: []string{
			`"(preinstall|postinstall|install|prepare)"\s*:`,
			`\bnpm\s+(install|i|ci|add)\b`,
			`\b(yarn|pnpm)\s+(add|install)\b`,
			`\bpip[0-9.]*\s+install\b`,
			`\bsetup\.py\s+install\b`,
			`\bgem\s+install\b`,
		},
	},
}

var catalog = compileCatalog(definitions)

func compileCatalog(defs []Rule) []Rule {
	out := make([]Rule, len(defs))
	for i, def := range defs {
		def.compiled = compilePatterns(def.Patterns)
		out[i] = def
	}
	return out
}

// All returns the full catalog in declaration order.
func All() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	return out
}

// ForTiers returns the catalog rules belonging to any of the given tiers, in
// declaration order.
func ForTiers(tiers ...Tier) []Rule {
	enabled := make(map[Tier]bool, len(tiers))
	for _, t := range tiers {
		enabled[t] = true
	}

	out := make([]Rule, 0, len(catalog))
	for _, rule := range catalog {
		if enabled[rule.Tier] {
			out = append(out, rule)
		}
	}
	return out
}

func Lookup(id string) (Rule, bool) {
	id = strings.TrimSpace(id)
	for _, rule := range catalog {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}
