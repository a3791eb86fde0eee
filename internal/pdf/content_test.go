package pdf

import "testing"

func TestDecodePageText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "Tj operator",
			content: "BT\n(Hello World) Tj\nET",
			want:    "Hello World",
		},
		{
			name:    "TJ array with kerning",
			content: "[(Hel) -10 (lo)] TJ",
			want:    "Hel lo",
		},
		{
			name:    "Multiple lines join with spaces",
			content: "(First line) Tj\n(Second line) Tj",
			want:    "First line Second line",
		},
		{
			name:    "Escaped parentheses",
			content: `(f\(x\) = y) Tj`,
			want:    "f(x) = y",
		},
		{
			name:    "Non-text operators ignored",
			content: "1 0 0 1 72 720 cm\n/F1 12 Tf\n(Visible) Tj",
			want:    "Visible",
		},
		{
			name:    "Empty stream",
			content: "",
			want:    "",
		},
		{
			name:    "Whitespace-only literal dropped",
			content: "(   ) Tj\n(kept) Tj",
			want:    "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodePageText(tt.content)
			if got != tt.want {
				t.Errorf("decodePageText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLiteralStrings(t *testing.T) {
	got := literalStrings("[(one) (two)] TJ")
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Expected [one two], got %v", got)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a\(b\)c`, "a(b)c"},
		{`tab\there`, "tab\there"},
		{`back\\slash`, `back\slash`},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := unescape(tt.in); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanup(t *testing.T) {
	if got := cleanup("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("cleanup() = %q", got)
	}
}
