package schedule

import "strings"

// ExtractJSONBlock returns the first balanced {...} span in text.
//
// Scanning starts at the first '{' and stops as soon as the brace depth
// returns to zero, so only the first top-level object is returned. Braces
// inside JSON string literals are counted like any other brace; a reply such
// as {"note": "}"} therefore ends early. Text that never closes the first
// object yields ("", false) rather than a truncated span.
//
// Byte scanning is safe for UTF-8 input: '{' and '}' never occur inside a
// multi-byte sequence.
func ExtractJSONBlock(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
