package sanitizer

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Dana Levi  ", want: "Dana Levi"},
		{name: "multiple spaces between words", input: "Dana    Levi", want: "Dana Levi"},
		{name: "tabs and newlines", input: "Dana\t\nLevi", want: "Dana Levi"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "hebrew characters", input: " דנה לוי ", want: "דנה לוי"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{name: "valid E.164 format", input: "+972541234567", region: "IL", want: "+972541234567"},
		{name: "with spaces", input: "+972 54 123 4567", region: "IL", want: "+972541234567"},
		{name: "with dashes", input: "+972-54-123-4567", region: "IL", want: "+972541234567"},
		{name: "national format uses region", input: "054-123-4567", region: "IL", want: "+972541234567"},
		{name: "international number ignores region", input: "+1 650-253-0000", region: "IL", want: "+16502530000"},
		{name: "leading and trailing spaces", input: "  +972541234567  ", region: "IL", want: "+972541234567"},
		{name: "empty string", input: "", region: "IL", want: ""},
		{name: "only whitespace", input: "   ", region: "IL", want: ""},
		{name: "unparseable kept trimmed", input: " call me ", region: "IL", want: "call me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input, tt.region); got != tt.want {
				t.Errorf("SanitizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone_Idempotent(t *testing.T) {
	for _, in := range []string{"054-123-4567", "+1 650-253-0000", "call me"} {
		once := SanitizePhone(in, "IL")
		twice := SanitizePhone(once, "IL")
		if once != twice {
			t.Errorf("SanitizePhone not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestPipeline_Apply(t *testing.T) {
	p := Pipeline{TrimAndNormalize, strings.ToUpper}
	if got := p.Apply("  a   b "); got != "A B" {
		t.Errorf("Apply() = %q, want %q", got, "A B")
	}
}
