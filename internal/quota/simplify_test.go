package quota

import "testing"

func TestSimplifier_DefaultRules(t *testing.T) {
	t.Parallel()
	s, err := NewSimplifier(DefaultRules())
	if err != nil {
		t.Fatalf("NewSimplifier: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"7 Days, 1 GB", "7D, 1GB"},
		{"", ""},
		{"   ", ""},
		{"30 HARI + 10 gb", "30D + 10GB"},
		{"1 DAY INTERNET", "1D Net"},
		{"Bonus video+5GB", "Bonus video+5GB"},
		{"  2   gb  ", "2GB"},
	}
	for _, tt := range tests {
		if got := s.Simplify(tt.in); got != tt.want {
			t.Fatalf("Simplify(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

/*
TestSimplifier_RuleOrder shows the day rule must run before digits are glued
to it: reversing the rules changes the result.
*/
func TestSimplifier_RuleOrder(t *testing.T) {
	t.Parallel()
	rules := DefaultRules()
	reversed := []Rule{rules[2], rules[0]}

	fwd, _ := NewSimplifier([]Rule{rules[0], rules[2]})
	rev, _ := NewSimplifier(reversed)
	if got := fwd.Simplify("7 DAYS"); got != "7D" {
		t.Fatalf("forward = %q; want 7D", got)
	}
	if got := rev.Simplify("7 DAYS"); got != "7DAYS" {
		t.Fatalf("reversed = %q; want 7DAYS", got)
	}
}

func TestSimplifier_ReplacementSyntax(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		rule Rule
		in   string
		want string
	}{
		{"literal", Rule{`NATIONAL`, "NASIONAL"}, "DATA NATIONAL", "DATA NASIONAL"},
		{"backslash_group", Rule{`(\d+)\s*MB`, `\1MB`}, "500 mb", "500MB"},
		{"brace_group", Rule{`(\d+)\s*MB`, `${1}M`}, "500 mb", "500M"},
		{"dollar_literal", Rule{`RP`, `$`}, "RP 5000", "$ 5000"},
		{"removal", Rule{`\bPROMO\b`, ""}, "PROMO 1GB", "1GB"},
		{"escaped_backslash", Rule{`X`, `\\`}, "AXB", `A\B`},
	}
	for _, tt := range tests {
		s, err := NewSimplifier([]Rule{tt.rule})
		if err != nil {
			t.Fatalf("%s: NewSimplifier: %v", tt.name, err)
		}
		if got := s.Simplify(tt.in); got != tt.want {
			t.Fatalf("%s: Simplify(%q) = %q; want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestNewSimplifier_Errors(t *testing.T) {
	t.Parallel()
	if _, err := NewSimplifier([]Rule{{Pattern: ""}}); err == nil {
		t.Fatalf("expected error for empty pattern")
	}
	if _, err := NewSimplifier([]Rule{{Pattern: "(unclosed"}}); err == nil {
		t.Fatalf("expected error for bad regex")
	}
}

func TestDefaultReplacement(t *testing.T) {
	t.Parallel()
	if r, ok := DefaultReplacement(PatternGB); !ok || r != `\1GB` {
		t.Fatalf("DefaultReplacement(GB) = (%q,%v)", r, ok)
	}
	if _, ok := DefaultReplacement(`FOO`); ok {
		t.Fatalf("unexpected default for unknown pattern")
	}
}
