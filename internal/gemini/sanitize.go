package gemini

import (
	"strings"
	"unicode/utf8"
)

// MaxInquiryLength is the maximum inquiry text forwarded to the model.
const MaxInquiryLength = 2000

// MaxFieldLength bounds every text field read back from the model.
const MaxFieldLength = 200

// SanitizeForPrompt prepares untrusted text for embedding in a prompt.
// Quotes are neutralised, control characters dropped, whitespace
// collapsed and the result truncated to maxLength bytes on a rune
// boundary.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = strings.TrimSpace(input[:cut])
	}
	return input
}

func sanitizeField(s string) string {
	return SanitizeForPrompt(s, MaxFieldLength)
}
