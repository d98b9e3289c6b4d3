package rules

const maxLineText = 240

// snippet truncates value to maxLineText characters (runes, not bytes).
func snippet(value string) string {
	if len(value) <= maxLineText {
		return value
	}
	count := 0
	for i := range value {
		if count == maxLineText {
			return value[:i]
		}
		count++
	}
	return value
}
