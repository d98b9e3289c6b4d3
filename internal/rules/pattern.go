package rules

import "regexp"

// Pattern is a case-insensitive regular expression. A Pattern whose source
// failed to compile never matches.
type Pattern struct {
	Source string
	re     *regexp.Regexp
	err    error
}

func CompilePattern(source string) *Pattern {
	re, err := regexp.Compile("(?i)" + source)
	if err != nil {
		return &Pattern{Source: source, err: err}
	}
	return &Pattern{Source: source, re: re}
}

func (p *Pattern) MatchString(input string) bool {
	if p == nil || p.re == nil {
		return false
	}
	return p.re.MatchString(input)
}

// Err reports the compile error, if any.
func (p *Pattern) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

func compilePatterns(sources []string) []*Pattern {
	out := make([]*Pattern, 0, len(sources))
	for _, src := range sources {
		out = append(out, CompilePattern(src))
	}
	return out
}
