package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"paketetl/pkg/records"
)

const nbsp = "\u00a0"

// Normalize case-folds and trims every string field. It never mutates its
// input: each record is cloned before its fields are rewritten, so the
// originals can be shared with other goroutines.
//
// Strings are NFC-composed, NBSP becomes a plain space, then the value is
// upper-cased and trimmed of spaces, commas and tabs. Non-string values pass
// through untouched.
type Normalize struct {
	// Skip lists fields left as-is (e.g. quota, which has its own stage).
	Skip []string
}

func (n Normalize) Apply(in []records.Record) []records.Record {
	if in == nil {
		return nil
	}
	out := make([]records.Record, len(in))
	for i, r := range in {
		out[i] = n.Record(r)
	}
	return out
}

// Record normalizes one record into a fresh map.
func (n Normalize) Record(r records.Record) records.Record {
	c := r.Clone()
	for k, v := range c {
		s, ok := v.(string)
		if !ok || n.skip(k) {
			continue
		}
		c[k] = Fold(s)
	}
	return c
}

func (n Normalize) skip(k string) bool {
	for _, f := range n.Skip {
		if f == k {
			return true
		}
	}
	return false
}

// Fold is the per-string normalization used by Normalize.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if strings.Contains(s, nbsp) {
		s = strings.ReplaceAll(s, nbsp, " ")
	}
	return records.TrimEdges(strings.ToUpper(s))
}
