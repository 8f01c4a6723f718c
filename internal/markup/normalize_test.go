package markup

import (
	"slices"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"artifact bold", "a\n**\nb", "a\n\nb"},
		{"artifact code", "a\n  `  \nb", "a\n\nb"},
		{"artifact strike", "~~", ""},
		{"thematic break kept", "a\n\n***\n\nb", "a\n\n***\n\nb"},
		{"underscore break kept", "a\n\n___\n\nb", "a\n\n___\n\nb"},
		{"reversed link", "(hello)[./world.md]", "[hello](./world.md)"},
		{"reversed link anchor", "see (top)[#intro] now", "see [top](#intro) now"},
		{"reversed non-url kept", "(a)[b]", "(a)[b]"},
		{"existing link kept", "[a](b.c)[d.e]", "[a](b.c)[d.e]"},
		{"inline code kept", "`(a)[b.c]`", "`(a)[b.c]`"},
		{"chained reversed", "(x)(a.b)[c.d]", "[x](a.b)(c.d)"},
		{"collapse blanks", "a\n\n\n\nb", "a\n\nb"},
		{"collapse after artifact", "a\n\n**\n\nb", "a\n\nb"},
		{"trailing blanks", "a\n\n\n\n", "a\n\n"},
		{"leading blanks", "\n\n\n\na", "\n\na"},
		{
			"code untouched",
			"```\n**\n\n\n\n(a)[b.c]\n```",
			"```\n**\n\n\n\n(a)[b.c]\n```",
		},
		{
			"unterminated fence",
			"~~~go\n**\n",
			"~~~go\n**\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"\r\n\r\n\r\n\r\nx",
		"(x)(a.b)[c.d]",
		"(a)[b.c](d)[e.f]",
		"# T\n\n**\n\n\n__\n\n~~\n\ntext",
		"```\n\n\n\n```\n\n\n\n**",
		"| a |\n| --- |\n\n\n\n| b |",
		"(l)[http://x](y)[z.w]",
		strings.Repeat("(a)[b.c]", 20),
		"- a\n  - b\n\n    ```\n    **\n\n\n\n    ```\n\n\n**",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalize_LongReversedLinkChain(t *testing.T) {
	in := strings.Repeat("(a)[b.c]", 20)
	want := strings.Repeat("[a](b.c)", 20)
	if got := Normalize(in); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestFencedLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []bool
	}{
		{
			name:  "top level",
			lines: []string{"text", "```", "**", "```", "after"},
			want:  []bool{false, true, true, true, false},
		},
		{
			name:  "indented code is not a fence",
			lines: []string{"    ```", "**"},
			want:  []bool{false, false},
		},
		{
			name:  "nested list item",
			lines: []string{"- a", "  - b", "", "    ```", "    **", "    ```", "after"},
			want:  []bool{false, false, false, true, true, true, false},
		},
		{
			name:  "fence opens the item",
			lines: []string{"1. ```", "   x", "   ```", "2. y"},
			want:  []bool{true, true, true, false},
		},
		{
			name:  "item end closes the fence",
			lines: []string{"- ```", "  x", "done"},
			want:  []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FencedLines(tt.lines)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FencedLines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_KeepsCodeInListItems(t *testing.T) {
	in := "- a\n  - b\n\n    ```\n    **\n\n\n\n    ```"
	if got := Normalize(in); got != in {
		t.Errorf("Normalize = %q, want code inside the list item untouched", got)
	}
}

func TestParseFence(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"```", true},
		{"```go", true},
		{"   ~~~", true},
		{"    ```", false},
		{"``", false},
		{"``` a`b", false},
		{"text", false},
	}

	for _, tt := range tests {
		if _, ok := parseFence(tt.line, 0); ok != tt.ok {
			t.Errorf("parseFence(%q) ok = %v, want %v", tt.line, ok, tt.ok)
		}
	}
}
