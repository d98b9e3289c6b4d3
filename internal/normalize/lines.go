package normalize

import "strings"

// SplitLines splits text on \r\n, \r and \n. The result always has at least
// one element so that line numbers line up with what an editor shows.
func SplitLines(text string) []string {
	if !strings.ContainsRune(text, '\r') {
		return strings.Split(text, "\n")
	}

	lines := make([]string, 0, strings.Count(text, "\n")+strings.Count(text, "\r")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(lines, text[start:])
}
