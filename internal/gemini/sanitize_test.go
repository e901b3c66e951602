package gemini

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeForPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "plain", input: "boda en Cartagena", max: 100, want: "boda en Cartagena"},
		{name: "quotes", input: "say \"hi\" `now`", max: 100, want: "say 'hi' 'now'"},
		{name: "newlines collapse", input: "line1\n\nline2\tend", max: 100, want: "line1 line2 end"},
		{name: "null bytes", input: "a\x00b", max: 100, want: "ab"},
		{name: "truncates", input: "abcdefghij", max: 5, want: "abcde"},
		{name: "truncation trims", input: "abcd efgh", max: 5, want: "abcd"},
		{name: "rune boundary", input: "ññññ", max: 3, want: "ñ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SanitizeForPrompt(tt.input, tt.max))
		})
	}
}

func FuzzSanitizeForPrompt(f *testing.F) {
	f.Add("hola", 10)
	f.Add("ñandú \"quoted\"\n\x00", 4)
	f.Add(strings.Repeat("é", 50), 7)

	f.Fuzz(func(t *testing.T, input string, maxLength int) {
		if maxLength < 0 || maxLength > 10000 {
			return
		}
		got := SanitizeForPrompt(input, maxLength)
		if len(got) > maxLength {
			t.Errorf("length %d exceeds %d", len(got), maxLength)
		}
		if strings.ContainsAny(got, "\"`\x00\n") {
			t.Errorf("unsafe characters survived in %q", got)
		}
		if utf8.ValidString(input) && !utf8.ValidString(got) {
			t.Errorf("valid input produced invalid UTF-8 %q", got)
		}
	})
}
