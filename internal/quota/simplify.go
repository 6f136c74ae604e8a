package quota

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one ordered rewrite applied by the Simplifier. Pattern is matched
// case-insensitively. Replacement may reference groups as \1 or ${1}.
type Rule struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Canonical simplification patterns.
const (
	PatternDays     = `\b(DAYS?|HARI)\b`
	PatternGB       = `(\d+)\s*GB`
	PatternD        = `(\d+)\s*D`
	PatternInternet = `\bINTERNET\b`
)

// DefaultRules is the stock unit-shortening rule set. Order matters: the day
// words must be collapsed to "D" before digits are glued to it.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: PatternDays, Replacement: "D"},
		{Pattern: PatternGB, Replacement: `\1GB`},
		{Pattern: PatternD, Replacement: `\1D`},
		{Pattern: PatternInternet, Replacement: "Net"},
	}
}

// DefaultReplacement returns the replacement configured for one of the
// canonical patterns. Settings files may list bare patterns; those resolve
// here, and unknown bare patterns remove their matches.
func DefaultReplacement(pattern string) (string, bool) {
	for _, r := range DefaultRules() {
		if r.Pattern == pattern {
			return r.Replacement, true
		}
	}
	return "", false
}

type compiledRule struct {
	re   *regexp.Regexp
	repl string
}

// Simplifier shortens an already joined quota string.
type Simplifier struct {
	rules []compiledRule
}

// NewSimplifier compiles rules in order.
func NewSimplifier(rules []Rule) (*Simplifier, error) {
	s := &Simplifier{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("quota: rule %d: empty pattern", i)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("quota: rule %d %q: %w", i, r.Pattern, err)
		}
		s.rules = append(s.rules, compiledRule{re: re, repl: expandTemplate(r.Replacement)})
	}
	return s, nil
}

// Simplify applies every rule and collapses whitespace.
//
//	"7 Days, 1 GB" -> "7D, 1GB"
func (s *Simplifier) Simplify(q string) string {
	if strings.TrimSpace(q) == "" {
		return ""
	}
	for _, r := range s.rules {
		q = r.re.ReplaceAllString(q, r.repl)
	}
	return squeeze(q)
}

// expandTemplate rewrites a replacement into regexp.Expand syntax: \N
// becomes ${N}, ${...} passes through and any other '$' is escaped.
func expandTemplate(repl string) string {
	if !strings.ContainsAny(repl, `\$`) {
		return repl
	}
	var b strings.Builder
	b.Grow(len(repl) + 4)
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '\\' && i+1 < len(repl) && isDigit(repl[i+1]):
			j := i + 1
			for j < len(repl) && isDigit(repl[j]) {
				j++
			}
			b.WriteString("${")
			b.WriteString(repl[i+1 : j])
			b.WriteByte('}')
			i = j - 1
		case c == '\\' && i+1 < len(repl) && repl[i+1] == '\\':
			b.WriteByte('\\')
			i++
		case c == '$' && i+1 < len(repl) && repl[i+1] == '{':
			end := strings.IndexByte(repl[i:], '}')
			if end < 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString(repl[i : i+end+1])
			i += end
		case c == '$':
			b.WriteString("$$")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
